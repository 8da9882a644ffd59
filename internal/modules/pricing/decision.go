// README: GO/REVIEW/NO-GO decision policy and the full evaluation bundle.
package pricing

import "fmt"

// Decide classifies a load against the profile's policy. Reasons are ordered
// in the sequence the checks ran.
func Decide(profile CostProfile, load LoadRequest) (Decision, []string, error) {
	load = load.Normalize()
	if reason, blocked := blockedReason(profile, load.BrokerName); blocked {
		return DecisionNoGo, []string{reason}, nil
	}
	rates, _, err := DeriveRates(profile, load)
	if err != nil {
		return "", nil, err
	}
	decision, reasons := classify(profile, load, rates)
	return decision, reasons, nil
}

// Evaluate runs the cost model, decision policy and script generator and
// returns the complete recommendation. Unlike Decide, it validates the load
// before the block-list veto, so an invalid load from a blocked broker is
// ErrInvalidLoad rather than NO-GO.
func Evaluate(profile CostProfile, load LoadRequest) (Recommendation, error) {
	load = load.Normalize()
	rates, costs, err := DeriveRates(profile, load)
	if err != nil {
		return Recommendation{}, err
	}

	var (
		decision Decision
		reasons  []string
	)
	if reason, blocked := blockedReason(profile, load.BrokerName); blocked {
		decision, reasons = DecisionNoGo, []string{reason}
	} else {
		decision, reasons = classify(profile, load, rates)
	}

	revenue := load.OfferedTotalRate
	profit := revenue - costs.TotalCost
	margin := 0.0
	if revenue > 0 {
		margin = profit / revenue
	}

	return Recommendation{
		Decision:               decision,
		Reasons:                reasons,
		OfferedRPM:             rates.OfferedRPM,
		BreakEvenRPM:           rates.BreakEvenRPM,
		TargetRPM:              rates.TargetRPM,
		TargetTotalRate:        rates.TargetRPM * load.LoadedMiles,
		ProjectedRevenue:       revenue,
		ProjectedTotalCost:     costs.TotalCost,
		ProjectedProfit:        profit,
		ProjectedMarginPercent: margin,
		NegotiationScript:      RenderScript(load, rates.BreakEvenRPM, rates.TargetRPM),
		Costs:                  costs,
	}, nil
}

func blockedReason(profile CostProfile, broker string) (string, bool) {
	reason, ok := profile.BlockBrokers[broker]
	if !ok {
		return "", false
	}
	if reason == "" {
		return "Broker is blocked", true
	}
	return "Broker is blocked: " + reason, true
}

// classify applies the deadhead advisory and the rate thresholds. A deadhead
// overage makes the GO branch unreachable, so a qualifying rate lands in REVIEW.
func classify(profile CostProfile, load LoadRequest, r Rates) (Decision, []string) {
	var reasons []string

	overCap := load.DeadheadMiles > profile.MaxDeadheadMiles
	if overCap {
		reasons = append(reasons, fmt.Sprintf("Deadhead %.0fmi exceeds soft cap %.0fmi (review)",
			load.DeadheadMiles, profile.MaxDeadheadMiles))
	}

	if r.OfferedRPM >= r.MinAcceptableRPM && !overCap {
		reasons = append(reasons, fmt.Sprintf("Offered RPM $%.2f meets minimum $%.2f", r.OfferedRPM, r.MinAcceptableRPM))
		return DecisionGo, reasons
	}
	if r.OfferedRPM < r.BreakEvenRPM {
		reasons = append(reasons, fmt.Sprintf("Offered RPM $%.2f is below break-even $%.2f", r.OfferedRPM, r.BreakEvenRPM))
		return DecisionNoGo, reasons
	}
	reasons = append(reasons, fmt.Sprintf("Offered RPM $%.2f is between break-even $%.2f and minimum $%.2f",
		r.OfferedRPM, r.BreakEvenRPM, r.MinAcceptableRPM))
	return DecisionReview, reasons
}
