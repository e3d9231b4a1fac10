package domain

// IntentClass is the search intent a signal most likely serves.
type IntentClass string

const (
	IntentInformational IntentClass = "informational"
	IntentNavigational  IntentClass = "navigational"
	IntentCommercial    IntentClass = "commercial"
	IntentTransactional IntentClass = "transactional"
)

// Valid reports whether the intent is one of the known classes.
func (i IntentClass) Valid() bool {
	switch i {
	case IntentInformational, IntentNavigational, IntentCommercial, IntentTransactional:
		return true
	}
	return false
}

// Priority ranks how urgently a signal deserves coverage.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether the priority is one of the known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// SignalRecord is a normalized unit of raw information returned by a collector.
// Records are treated as immutable once created.
type SignalRecord struct {
	ID          string      `json:"id"`
	Source      string      `json:"source"`
	RawText     string      `json:"rawText"`
	URL         string      `json:"url,omitempty"`
	Tags        []string    `json:"tags"`
	IntentClass IntentClass `json:"intentClass"`
	Priority    Priority    `json:"priority"`
}
