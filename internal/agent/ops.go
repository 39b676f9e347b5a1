package agent

const OpsAgentName = "Ops-Agent"

// OpsConfig holds the configured feasibility snapshot values.
type OpsConfig struct {
	AvailableSeats int
	HotelCapacity  string
}

// OpsFeasibility is the ops agent's snapshot of rebooking and accommodation
// capacity.
type OpsFeasibility struct {
	Agent          string `json:"agent"`
	AvailableSeats int    `json:"available_seats"`
	HotelCapacity  string `json:"hotel_capacity"`
}

// OpsSnapshot reports current operational feasibility from configuration.
func OpsSnapshot(cfg OpsConfig) OpsFeasibility {
	return OpsFeasibility{
		Agent:          OpsAgentName,
		AvailableSeats: cfg.AvailableSeats,
		HotelCapacity:  cfg.HotelCapacity,
	}
}
