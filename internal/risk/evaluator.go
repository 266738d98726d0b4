package risk

import "math"

// Evaluation is the result of one stop-loss check.
type Evaluation struct {
	HardStop  float64
	TrailStop float64
	FinalStop float64
	Kind      TriggerKind
	Triggered bool
	Valid     bool
}

// Evaluate computes the hard and trailing stops for a position and reports
// whether the current price has crossed the governing stop.
//
// LONG: hard = entry*(1-hardPct), trail = extreme*(1-trailPct), the higher
// of the two governs, triggered when current <= governing stop. SHORT is
// the mirror with + offsets, the lower stop governing, triggered when
// current >= it. The trigger kind is recorded when the governing stop is
// selected, not re-derived by comparing values afterwards, so equal stops
// still classify deterministically. The trailing stop wins ties, since it
// is the one that has caught up to the hard stop.
//
// Non-positive or non-finite inputs yield Valid=false and never trigger;
// callers log those as data anomalies.
func Evaluate(side Side, entryPrice, extremePrice, currentPrice, hardPct, trailPct float64) Evaluation {
	if !validPrice(entryPrice) || !validPrice(extremePrice) || !validPrice(currentPrice) {
		return Evaluation{}
	}
	if hardPct <= 0 || hardPct >= 1 || trailPct <= 0 || trailPct >= 1 {
		return Evaluation{}
	}

	ev := Evaluation{Valid: true}

	switch side {
	case SideLong:
		ev.HardStop = entryPrice * (1 - hardPct)
		ev.TrailStop = extremePrice * (1 - trailPct)
		if ev.TrailStop >= ev.HardStop {
			ev.FinalStop = ev.TrailStop
			ev.Kind = TriggerTrail
		} else {
			ev.FinalStop = ev.HardStop
			ev.Kind = TriggerHard
		}
		ev.Triggered = currentPrice <= ev.FinalStop
	case SideShort:
		ev.HardStop = entryPrice * (1 + hardPct)
		ev.TrailStop = extremePrice * (1 + trailPct)
		if ev.TrailStop <= ev.HardStop {
			ev.FinalStop = ev.TrailStop
			ev.Kind = TriggerTrail
		} else {
			ev.FinalStop = ev.HardStop
			ev.Kind = TriggerHard
		}
		ev.Triggered = currentPrice >= ev.FinalStop
	default:
		return Evaluation{}
	}

	return ev
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}
