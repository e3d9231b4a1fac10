package domain

import "time"

// PublishStatus is the state recorded for a published artifact.
type PublishStatus string

const (
	PublishStatusPublished PublishStatus = "published"
)

// PublishRecord confirms one artifact was persisted. Terminal, never mutated.
type PublishRecord struct {
	ArtifactID  string        `json:"artifactId"`
	Slug        string        `json:"slug"`
	PublishedAt time.Time     `json:"publishedAt"`
	Status      PublishStatus `json:"status"`
}
