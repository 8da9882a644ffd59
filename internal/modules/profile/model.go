// README: Cost profile input, summary and defaults.
package profile

import (
	"errors"
	"maps"

	"ada/internal/config"
	"ada/internal/modules/pricing"
)

// ErrNotFound aliases the pricing sentinel so callers can test either.
var ErrNotFound = pricing.ErrProfileNotFound

var ErrBadRequest = errors.New("bad request")

// Input is an upsert payload. Nil fields take the configured defaults.
type Input struct {
	ProfileID   string `json:"profile_id"`
	DisplayName string `json:"display_name"`

	DriverPayPerMile     *float64 `json:"driver_pay_per_mile"`
	MaintenancePerMile   *float64 `json:"maintenance_per_mile"`
	InsurancePerMile     *float64 `json:"insurance_per_mile"`
	TiresPerMile         *float64 `json:"tires_per_mile"`
	PermitsTollsPerMile  *float64 `json:"permits_tolls_per_mile"`
	OtherVariablePerMile *float64 `json:"other_variable_per_mile"`

	FixedCostsPerDay  *float64 `json:"fixed_costs_per_day"`
	TargetMilesPerDay *float64 `json:"target_miles_per_day"`

	MPG               *float64           `json:"mpg"`
	FuelPriceByRegion map[string]float64 `json:"fuel_price_by_region"`

	MinMarginPercent       *float64 `json:"min_margin_percent"`
	PreferredMarginPercent *float64 `json:"preferred_margin_percent"`
	MaxDeadheadMiles       *float64 `json:"max_deadhead_miles"`

	BlockBrokers map[string]string `json:"block_brokers"`
}

// Summary is the list view of a profile.
type Summary struct {
	ProfileID              string  `json:"profile_id"`
	DisplayName            string  `json:"display_name"`
	MPG                    float64 `json:"mpg"`
	MinMarginPercent       float64 `json:"min_margin_percent"`
	PreferredMarginPercent float64 `json:"preferred_margin_percent"`
	MaxDeadheadMiles       float64 `json:"max_deadhead_miles"`
}

func summarize(p pricing.CostProfile) Summary {
	return Summary{
		ProfileID:              p.ProfileID,
		DisplayName:            p.DisplayName,
		MPG:                    p.MPG,
		MinMarginPercent:       p.MinMarginPercent,
		PreferredMarginPercent: p.PreferredMarginPercent,
		MaxDeadheadMiles:       p.MaxDeadheadMiles,
	}
}

func fromDefaults(d config.ProfileDefaults) pricing.CostProfile {
	return pricing.CostProfile{
		DriverPayPerMile:       d.DriverPayPerMile,
		MaintenancePerMile:     d.MaintenancePerMile,
		InsurancePerMile:       d.InsurancePerMile,
		TiresPerMile:           d.TiresPerMile,
		PermitsTollsPerMile:    d.PermitsTollsPerMile,
		OtherVariablePerMile:   d.OtherVariablePerMile,
		FixedCostsPerDay:       d.FixedCostsPerDay,
		TargetMilesPerDay:      d.TargetMilesPerDay,
		MPG:                    d.MPG,
		FuelPriceByRegion:      maps.Clone(d.FuelPriceByRegion),
		MinMarginPercent:       d.MinMarginPercent,
		PreferredMarginPercent: d.PreferredMarginPercent,
		MaxDeadheadMiles:       d.MaxDeadheadMiles,
		BlockBrokers:           pricing.BlockList{},
	}
}

// apply overlays the input on a defaults template. Maps replace rather than merge.
func (in Input) apply(base pricing.CostProfile) pricing.CostProfile {
	p := base
	p.ProfileID = in.ProfileID
	p.DisplayName = in.DisplayName
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.DriverPayPerMile, in.DriverPayPerMile)
	set(&p.MaintenancePerMile, in.MaintenancePerMile)
	set(&p.InsurancePerMile, in.InsurancePerMile)
	set(&p.TiresPerMile, in.TiresPerMile)
	set(&p.PermitsTollsPerMile, in.PermitsTollsPerMile)
	set(&p.OtherVariablePerMile, in.OtherVariablePerMile)
	set(&p.FixedCostsPerDay, in.FixedCostsPerDay)
	set(&p.TargetMilesPerDay, in.TargetMilesPerDay)
	set(&p.MPG, in.MPG)
	set(&p.MinMarginPercent, in.MinMarginPercent)
	set(&p.PreferredMarginPercent, in.PreferredMarginPercent)
	set(&p.MaxDeadheadMiles, in.MaxDeadheadMiles)
	p.FuelPriceByRegion = maps.Clone(base.FuelPriceByRegion)
	if in.FuelPriceByRegion != nil {
		p.FuelPriceByRegion = pricing.FuelPrices(maps.Clone(in.FuelPriceByRegion))
	}
	p.BlockBrokers = maps.Clone(base.BlockBrokers)
	if in.BlockBrokers != nil {
		p.BlockBrokers = pricing.BlockList(maps.Clone(in.BlockBrokers))
	}
	if p.BlockBrokers == nil {
		p.BlockBrokers = pricing.BlockList{}
	}
	return p
}
