package domain

import "time"

// Stage is a state of the run state machine.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageCollecting Stage = "collecting"
	StageAnalyzing  Stage = "analyzing"
	StagePlanning   Stage = "planning"
	StageGenerating Stage = "generating"
	StageOptimizing Stage = "optimizing"
	StagePublishing Stage = "publishing"
	StageCompleted  Stage = "completed"
	StageError      Stage = "error"
)

// Terminal reports whether no further transitions are possible.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageError
}

// EventStatus distinguishes progress updates from the terminal events.
type EventStatus string

const (
	EventProgress  EventStatus = "progress"
	EventCompleted EventStatus = "completed"
	EventError     EventStatus = "error"
)

// ProgressEvent is one entry of a run's status stream. For an error event,
// Stage names the stage that failed.
type ProgressEvent struct {
	Seq       int         `json:"seq"`
	Stage     Stage       `json:"stage"`
	Status    EventStatus `json:"status"`
	Percent   int         `json:"percent"`
	Message   string      `json:"message"`
	Payload   any         `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Terminal reports whether the event closes the stream.
func (e ProgressEvent) Terminal() bool {
	return e.Status == EventCompleted || e.Status == EventError
}

// Summary is the payload of the completed event.
type Summary struct {
	RunID         string   `json:"runId"`
	Sources       int      `json:"sources"`
	FailedSources []string `json:"failedSources,omitempty"`
	SignalRecords int      `json:"signalRecords"`
	ResearchData  int      `json:"researchData"`
	Clusters      int      `json:"clusters"`
	Artifacts     int      `json:"artifacts"`
	Published     int      `json:"published"`
}

// Failure is the payload of the error event.
type Failure struct {
	RunID string `json:"runId"`
	Stage Stage  `json:"stage"`
	Cause string `json:"cause"`
	// Published lists slugs persisted before a publishing failure aborted the run.
	Published []string `json:"published,omitempty"`
	Failed    string   `json:"failed,omitempty"`
	// Orphaned is the id of an artifact row stored without its publish record.
	Orphaned string `json:"orphaned,omitempty"`
}
