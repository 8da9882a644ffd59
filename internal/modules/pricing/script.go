// README: Negotiation script rendered from the computed rates.
package pricing

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RenderScript produces the broker-facing counter-offer message. It does not
// look at the decision; callers choose whether to surface it.
func RenderScript(load LoadRequest, breakEvenRPM, targetRPM float64) string {
	load = load.Normalize()
	offeredRPM := 0.0
	if load.LoadedMiles > 0 {
		offeredRPM = load.OfferedTotalRate / load.LoadedMiles
	}
	p := message.NewPrinter(language.English)

	return fmt.Sprintf("Hi, thanks for sending this over. For %s, %s → %s, %s (%.0f loaded mi, %.0f deadhead), "+
		"we're currently at $%.2f/mi ($%s total). "+
		"Given operating costs and deadhead, we need $%.2f/mi to break even. "+
		"If you can do $%.2f/mi ($%s total), we can confirm and roll now. "+
		"Can you check with your customer and get me as close as possible?",
		load.OriginCity, load.OriginState, load.DestCity, load.DestState,
		load.LoadedMiles, load.DeadheadMiles,
		offeredRPM, wholeDollars(p, load.OfferedTotalRate),
		breakEvenRPM,
		targetRPM, wholeDollars(p, targetRPM*load.LoadedMiles),
	)
}

// wholeDollars formats v with no decimals and comma grouping, e.g. 12,345.
func wholeDollars(p *message.Printer, v float64) string {
	return p.Sprintf("%.0f", v)
}
