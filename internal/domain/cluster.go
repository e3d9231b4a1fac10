package domain

// CompetitionLevel describes how contested a topic is.
type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "low"
	CompetitionMedium CompetitionLevel = "medium"
	CompetitionHigh   CompetitionLevel = "high"
)

// Valid reports whether the level is low, medium or high.
func (c CompetitionLevel) Valid() bool {
	switch c {
	case CompetitionLow, CompetitionMedium, CompetitionHigh:
		return true
	}
	return false
}

// Score bounds shared by authority and business alignment.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Subtopic supports a cluster's pillar topic.
type Subtopic struct {
	Topic       string      `json:"topic"`
	Keywords    []string    `json:"keywords"`
	Intent      IntentClass `json:"intent"`
	ContentType string      `json:"contentType"`
	Priority    Priority    `json:"priority"`
}

// TopicCluster scopes exactly one generated content artifact.
type TopicCluster struct {
	PillarTopic       string           `json:"pillarTopic"`
	PillarKeyword     string           `json:"pillarKeyword"`
	Subtopics         []Subtopic       `json:"subtopics"`
	AuthorityScore    float64          `json:"authorityScore"`
	CompetitionLevel  CompetitionLevel `json:"competitionLevel"`
	BusinessAlignment float64          `json:"businessAlignment"`
	ResearchIDs       []string         `json:"researchIds"`
}
