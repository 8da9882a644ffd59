// README: Cost profile, load request and recommendation definitions for the pricing engine.
package pricing

import "errors"

var (
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrInvalidLoad     = errors.New("invalid load")
	ErrProfileNotFound = errors.New("profile not found")
)

// NationalRegion is the fuel-price key used when a load's region has no entry.
const NationalRegion = "National"

const DefaultEquipmentType = "Van"

type Decision string

const (
	DecisionGo     Decision = "GO"
	DecisionReview Decision = "REVIEW"
	DecisionNoGo   Decision = "NO-GO"
)

// FuelPrices maps a region name to a price per gallon.
type FuelPrices map[string]float64

// BlockList maps a broker name to the reason it is blocked.
type BlockList map[string]string

type CostProfile struct {
	ProfileID   string `json:"profile_id"`
	DisplayName string `json:"display_name"`

	DriverPayPerMile     float64 `json:"driver_pay_per_mile"`
	MaintenancePerMile   float64 `json:"maintenance_per_mile"`
	InsurancePerMile     float64 `json:"insurance_per_mile"`
	TiresPerMile         float64 `json:"tires_per_mile"`
	PermitsTollsPerMile  float64 `json:"permits_tolls_per_mile"`
	OtherVariablePerMile float64 `json:"other_variable_per_mile"`

	FixedCostsPerDay  float64 `json:"fixed_costs_per_day"`
	TargetMilesPerDay float64 `json:"target_miles_per_day"`

	MPG               float64    `json:"mpg"`
	FuelPriceByRegion FuelPrices `json:"fuel_price_by_region"`

	MinMarginPercent       float64 `json:"min_margin_percent"`
	PreferredMarginPercent float64 `json:"preferred_margin_percent"`

	MaxDeadheadMiles float64   `json:"max_deadhead_miles"`
	BlockBrokers     BlockList `json:"block_brokers"`
}

// VariablePerMile is the sum of the six per-mile cost components.
func (p CostProfile) VariablePerMile() float64 {
	return p.DriverPayPerMile +
		p.MaintenancePerMile +
		p.InsurancePerMile +
		p.TiresPerMile +
		p.PermitsTollsPerMile +
		p.OtherVariablePerMile
}

type LoadRequest struct {
	OriginCity    string `json:"origin_city"`
	OriginState   string `json:"origin_state"`
	DestCity      string `json:"dest_city"`
	DestState     string `json:"dest_state"`
	EquipmentType string `json:"equipment_type"`
	BrokerName    string `json:"broker_name"`

	LoadedMiles      float64 `json:"loaded_miles"`
	DeadheadMiles    float64 `json:"deadhead_miles"`
	OfferedTotalRate float64 `json:"offered_total_rate"`
	FuelRegion       string  `json:"fuel_region"`
	Notes            string  `json:"notes,omitempty"`
}

// Normalize returns a copy with the optional fields defaulted.
func (l LoadRequest) Normalize() LoadRequest {
	if l.FuelRegion == "" {
		l.FuelRegion = NationalRegion
	}
	if l.EquipmentType == "" {
		l.EquipmentType = DefaultEquipmentType
	}
	return l
}

type CostBreakdown struct {
	FuelCost       float64 `json:"fuel_cost"`
	VariableCost   float64 `json:"variable_cost"`
	FixedAllocated float64 `json:"fixed_allocated"`
	TotalCost      float64 `json:"total_cost"`
}

// Rates holds the per-mile figures derived from a cost breakdown.
type Rates struct {
	OfferedRPM       float64
	BreakEvenRPM     float64
	TargetRPM        float64
	MinAcceptableRPM float64
}

// Recommendation is the result bundle of one evaluation. It is also the shape
// handed to the log sink.
type Recommendation struct {
	Decision               Decision      `json:"decision"`
	Reasons                []string      `json:"reasons"`
	OfferedRPM             float64       `json:"offered_rpm"`
	BreakEvenRPM           float64       `json:"break_even_rpm"`
	TargetRPM              float64       `json:"target_rpm"`
	TargetTotalRate        float64       `json:"target_total_rate"`
	ProjectedRevenue       float64       `json:"projected_revenue"`
	ProjectedTotalCost     float64       `json:"projected_total_cost"`
	ProjectedProfit        float64       `json:"projected_profit"`
	ProjectedMarginPercent float64       `json:"projected_margin_percent"`
	NegotiationScript      string        `json:"negotiation_script"`
	Costs                  CostBreakdown `json:"costs"`
}
