package domain

// ResearchDatum is an enriched grouping of one or more signal records.
type ResearchDatum struct {
	ID           string      `json:"id"`
	Keywords     []string    `json:"keywords"`
	Intent       IntentClass `json:"intent"`
	ClusterLabel string      `json:"clusterLabel"`
	Entities     []string    `json:"entities"`
	SourceIDs    []string    `json:"sourceIds"`
}
