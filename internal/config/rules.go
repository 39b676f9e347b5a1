package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules holds the static subject classification tables. The defaults cover
// the airports this service was built for; an operator can override the whole
// set with a YAML file (RULES_FILE).
type Rules struct {
	// ElevatedSubjects classify HIGH on the fallback path (monsoon- and
	// fog-prone airports with a history of extended disruptions).
	ElevatedSubjects []string `yaml:"elevated_subjects"`
	// HubSubjects escalate cascading risk one level.
	HubSubjects []string `yaml:"hub_subjects"`
	// SubjectCities maps subject codes to the city names the weather
	// provider understands.
	SubjectCities map[string]string `yaml:"subject_cities"`
}

// DefaultRules returns the built-in classification tables.
func DefaultRules() Rules {
	return Rules{
		ElevatedSubjects: []string{"DEL", "BOM", "CCU", "BLR"},
		HubSubjects:      []string{"DEL", "BOM", "BLR", "MAA"},
		SubjectCities: map[string]string{
			"DEL": "Delhi",
			"BOM": "Mumbai",
			"CCU": "Kolkata",
			"BLR": "Bangalore",
			"MAA": "Chennai",
			"HYD": "Hyderabad",
			"COK": "Kochi",
			"GOI": "Goa",
		},
	}
}

// LoadRules reads the rules file at path, falling back to DefaultRules for
// any section the file leaves empty. An empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	defaults := DefaultRules()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	if len(rules.ElevatedSubjects) == 0 {
		rules.ElevatedSubjects = defaults.ElevatedSubjects
	}
	if len(rules.HubSubjects) == 0 {
		rules.HubSubjects = defaults.HubSubjects
	}
	if len(rules.SubjectCities) == 0 {
		rules.SubjectCities = defaults.SubjectCities
	}

	return rules, nil
}
