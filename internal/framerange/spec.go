package framerange

import "strings"

// Strategy selects how the bake interval is computed.
type Strategy string

const (
	// StrategyCandidates derives the interval from head/tail attributes on
	// range-source candidates.
	StrategyCandidates Strategy = "candidates"
	// StrategyWindow uses the host's current fixed window.
	StrategyWindow Strategy = "window"
	// StrategyManual uses operator-entered start/end frames.
	StrategyManual Strategy = "manual"
)

// ParseStrategy converts a string into a known Strategy.
func ParseStrategy(value string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "candidates":
		return StrategyCandidates, true
	case "window", "timeline":
		return StrategyWindow, true
	case "manual", "custom":
		return StrategyManual, true
	default:
		return "", false
	}
}

// Spec describes one range-resolution request.
type Spec struct {
	Strategy Strategy
	PrePad   int
	PostPad  int

	// FirstRef/LastRef optionally pin the candidates supplying the head and
	// tail values. When empty the resolver auto-picks the minimum head and
	// maximum tail across all readable candidates.
	FirstRef string
	LastRef  string

	ManualStart int
	ManualEnd   int

	// Fallback resolves via StrategyWindow when candidate attributes are
	// unreadable instead of failing.
	Fallback bool
}

// Result is a normalized resolved interval plus any non-fatal warnings.
type Result struct {
	Start        int
	End          int
	Warnings     []string
	UsedFallback bool
}

// Normalize orders an interval so start never exceeds end. The swapped
// report lets callers surface a warning while proceeding with the run.
func Normalize(start, end int) (int, int, bool) {
	if start > end {
		return end, start, true
	}
	return start, end, false
}
