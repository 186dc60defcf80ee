package registry

import "strings"

// Status represents the terminal-state lattice of a work item.
type Status string

const (
	StatusPending  Status = "pending"
	StatusBaked    Status = "baked"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

var allStatuses = []Status{
	StatusPending,
	StatusBaked,
	StatusSkipped,
	StatusFailed,
	StatusCanceled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status is a run outcome rather than the
// waiting state.
func (s Status) IsTerminal() bool {
	_, ok := statusSet[s]
	return ok && s != StatusPending
}

// Label returns the operator-facing name for a status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Not baked"
	case StatusBaked:
		return "Baked"
	case StatusSkipped:
		return "Skipped"
	case StatusFailed:
		return "Failed"
	case StatusCanceled:
		return "Canceled"
	default:
		return string(s)
	}
}

// Readiness is the tri-state host signal indicating an item already looks
// processed. Read failures map to ReadinessUnknown.
type Readiness string

const (
	ReadinessReady    Readiness = "ready"
	ReadinessNotReady Readiness = "not_ready"
	ReadinessUnknown  Readiness = "unknown"
)

// ParseReadiness converts a string into a known Readiness, defaulting to
// ReadinessUnknown for anything unrecognized.
func ParseReadiness(value string) Readiness {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ready", "true", "1":
		return ReadinessReady
	case "not_ready", "false", "0":
		return ReadinessNotReady
	default:
		return ReadinessUnknown
	}
}

// WorkItem is one uniquely identified unit eligible for batch processing.
type WorkItem struct {
	ID          string
	DisplayName string
	Readiness   Readiness
}
