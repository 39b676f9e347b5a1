package agent

const ComplianceAgentName = "Compliance-Agent"

// Compliance rule values.
const (
	RuleHotelMandatory   = "HOTEL_MANDATORY"
	RuleHotelNotRequired = "HOTEL_NOT_REQUIRED"
)

// hotelMandatoryDelayHours is the regulatory threshold above which hotel
// accommodation must be offered.
const hotelMandatoryDelayHours = 2

// ComplianceRuling is the compliance agent's determination.
type ComplianceRuling struct {
	Agent      string  `json:"agent"`
	Rule       string  `json:"rule"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// ComplianceRule applies the regulatory delay threshold. Pure function,
// confidence is always 1.0: regulation is not a judgment call.
func ComplianceRule(delayHours int) ComplianceRuling {
	if delayHours >= hotelMandatoryDelayHours {
		return ComplianceRuling{
			Agent:      ComplianceAgentName,
			Rule:       RuleHotelMandatory,
			Reason:     "Delay exceeds regulatory threshold",
			Confidence: 1.0,
		}
	}
	return ComplianceRuling{
		Agent:      ComplianceAgentName,
		Rule:       RuleHotelNotRequired,
		Reason:     "Delay below regulatory threshold",
		Confidence: 1.0,
	}
}
