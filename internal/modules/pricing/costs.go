// README: Cost model and rate-per-mile derivations.
package pricing

import "fmt"

// Validate checks the profile fields the cost model divides by or sums.
func (p CostProfile) Validate() error {
	if !(p.MPG > 0) {
		return fmt.Errorf("%w: mpg must be positive", ErrInvalidProfile)
	}
	if !(p.TargetMilesPerDay > 0) {
		return fmt.Errorf("%w: target_miles_per_day must be positive", ErrInvalidProfile)
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"driver_pay_per_mile", p.DriverPayPerMile},
		{"maintenance_per_mile", p.MaintenancePerMile},
		{"insurance_per_mile", p.InsurancePerMile},
		{"tires_per_mile", p.TiresPerMile},
		{"permits_tolls_per_mile", p.PermitsTollsPerMile},
		{"other_variable_per_mile", p.OtherVariablePerMile},
		{"fixed_costs_per_day", p.FixedCostsPerDay},
		{"min_margin_percent", p.MinMarginPercent},
		{"preferred_margin_percent", p.PreferredMarginPercent},
		{"max_deadhead_miles", p.MaxDeadheadMiles},
	}
	for _, f := range fields {
		if !(f.value >= 0) {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidProfile, f.name)
		}
	}
	return nil
}

// Validate checks the load preconditions shared by every rate derivation.
func (l LoadRequest) Validate() error {
	if !(l.LoadedMiles > 0) {
		return fmt.Errorf("%w: loaded_miles must be positive", ErrInvalidLoad)
	}
	if !(l.DeadheadMiles >= 0) {
		return fmt.Errorf("%w: deadhead_miles must not be negative", ErrInvalidLoad)
	}
	if !(l.OfferedTotalRate > 0) {
		return fmt.Errorf("%w: offered_total_rate must be positive", ErrInvalidLoad)
	}
	return nil
}

// FuelPrice resolves the price for region, falling back to the profile's own
// National entry. A profile with neither is misconfigured.
func (p CostProfile) FuelPrice(region string) (float64, error) {
	if region == "" {
		region = NationalRegion
	}
	if price, ok := p.FuelPriceByRegion[region]; ok {
		return price, nil
	}
	if price, ok := p.FuelPriceByRegion[NationalRegion]; ok {
		return price, nil
	}
	return 0, fmt.Errorf("%w: no fuel price for region %q and no %s fallback", ErrInvalidProfile, region, NationalRegion)
}

// ComputeCosts allocates fuel, variable and fixed cost over loaded plus deadhead miles.
func ComputeCosts(profile CostProfile, load LoadRequest) (CostBreakdown, error) {
	if err := profile.Validate(); err != nil {
		return CostBreakdown{}, err
	}
	price, err := profile.FuelPrice(load.FuelRegion)
	if err != nil {
		return CostBreakdown{}, err
	}

	totalMiles := load.LoadedMiles + load.DeadheadMiles
	fuel := totalMiles / profile.MPG * price
	variable := totalMiles * profile.VariablePerMile()
	fixed := totalMiles * (profile.FixedCostsPerDay / profile.TargetMilesPerDay)

	return CostBreakdown{
		FuelCost:       fuel,
		VariableCost:   variable,
		FixedAllocated: fixed,
		TotalCost:      fuel + variable + fixed,
	}, nil
}

func OfferedRPM(load LoadRequest) (float64, error) {
	if !(load.LoadedMiles > 0) {
		return 0, fmt.Errorf("%w: loaded_miles must be positive", ErrInvalidLoad)
	}
	return load.OfferedTotalRate / load.LoadedMiles, nil
}

// DeriveRates validates the load, runs the cost model once and derives every
// per-mile figure from it.
func DeriveRates(profile CostProfile, load LoadRequest) (Rates, CostBreakdown, error) {
	if err := load.Validate(); err != nil {
		return Rates{}, CostBreakdown{}, err
	}
	costs, err := ComputeCosts(profile, load)
	if err != nil {
		return Rates{}, CostBreakdown{}, err
	}
	offered, err := OfferedRPM(load)
	if err != nil {
		return Rates{}, CostBreakdown{}, err
	}
	breakEven := costs.TotalCost / load.LoadedMiles
	return Rates{
		OfferedRPM:       offered,
		BreakEvenRPM:     breakEven,
		TargetRPM:        breakEven * (1 + profile.PreferredMarginPercent),
		MinAcceptableRPM: breakEven * (1 + profile.MinMarginPercent),
	}, costs, nil
}
