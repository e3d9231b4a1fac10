package domain

import "time"

// ExperienceSignals flag first-hand implementation experience in the body.
type ExperienceSignals struct {
	FirstPersonLanguage bool `json:"firstPersonLanguage"`
	ImplementationSteps bool `json:"implementationSteps"`
}

// ExpertiseSignals flag technical depth.
type ExpertiseSignals struct {
	CodeExamples   bool `json:"codeExamples"`
	CodeBlockCount int  `json:"codeBlockCount"`
	Score          int  `json:"score"`
}

// AuthoritativenessSignals count outbound references.
type AuthoritativenessSignals struct {
	HasCitations  bool `json:"hasCitations"`
	CitationCount int  `json:"citationCount"`
}

// TrustworthinessSignals flag balanced, dated writing.
type TrustworthinessSignals struct {
	DiscussesLimitations bool `json:"discussesLimitations"`
	MentionsDates        bool `json:"mentionsDates"`
}

// TrustSignals are heuristic credibility indicators, not guarantees.
type TrustSignals struct {
	Experience        ExperienceSignals        `json:"experience"`
	Expertise         ExpertiseSignals         `json:"expertise"`
	Authoritativeness AuthoritativenessSignals `json:"authoritativeness"`
	Trustworthiness   TrustworthinessSignals   `json:"trustworthiness"`
}

// FAQEntry is a question/answer pair lifted from the body.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// StructuredData is machine-readable metadata attached to an artifact.
type StructuredData struct {
	Type      string     `json:"type"`
	Headline  string     `json:"headline"`
	Author    string     `json:"author"`
	Keywords  []string   `json:"keywords"`
	Citations []string   `json:"citations"`
	FAQ       []FAQEntry `json:"faq"`
	// Markup is the schema.org JSON-LD rendering of the fields above.
	Markup string `json:"markup"`
}

// ContentArtifact is one generated long-form piece. Body is never rewritten
// after generation.
type ContentArtifact struct {
	Title          string         `json:"title"`
	Slug           string         `json:"slug"`
	Body           string         `json:"body"`
	StructuredData StructuredData `json:"structuredData"`
	TrustSignals   TrustSignals   `json:"trustSignals"`
	SourceCluster  TopicCluster   `json:"sourceCluster"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}
