package risk

// Side is the direction of a tracked position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// TriggerKind identifies which stop formula produced the governing stop.
type TriggerKind string

const (
	TriggerHard  TriggerKind = "HARD"
	TriggerTrail TriggerKind = "TRAIL"
)

// RiskRecord tracks the best price seen for a position since it was first
// observed: the maximum for LONG, the minimum for SHORT. The extreme never
// moves against the position; the store enforces that at the update site.
// A record lives exactly as long as its position does.
type RiskRecord struct {
	ExtremePrice float64 `json:"extreme_price"`
	Side         Side    `json:"side"`
}
