package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ContentMachine/internal/domain"
	"ContentMachine/internal/ports"
)

// Tables written by the publisher.
const (
	TableArtifacts      = "content_artifacts"
	TablePublishRecords = "publish_records"
)

// PublishError reports a failed write for one artifact. It unwraps to
// domain.ErrPersistence. ArtifactID is set when the artifact row was written
// but its publish record was not.
type PublishError struct {
	Slug       string
	ArtifactID string
	Err        error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Slug, e.Err)
}

func (e *PublishError) Unwrap() []error {
	return []error{domain.ErrPersistence, e.Err}
}

// Publisher persists finished artifacts and records them as published.
type Publisher struct {
	store    ports.Store
	notifier ports.Notifier
	siteURL  string
	logger   *slog.Logger
	now      func() time.Time
}

// NewPublisher wires the store and an optional notifier.
func NewPublisher(store ports.Store, notifier ports.Notifier, siteURL string, logger *slog.Logger) *Publisher {
	return &Publisher{
		store:    store,
		notifier: notifier,
		siteURL:  siteURL,
		logger:   logger,
		now:      time.Now,
	}
}

// Publish inserts the artifact, then its publish record. It is called once
// per artifact per run; rows are only ever appended.
func (p *Publisher) Publish(ctx context.Context, runID string, a domain.ContentArtifact) (domain.PublishRecord, error) {
	if p.store == nil {
		return domain.PublishRecord{}, &PublishError{Slug: a.Slug, Err: fmt.Errorf("store is not configured")}
	}

	row, err := artifactRow(runID, a)
	if err != nil {
		return domain.PublishRecord{}, &PublishError{Slug: a.Slug, Err: err}
	}

	saved, err := p.store.Insert(ctx, TableArtifacts, row)
	if err != nil {
		return domain.PublishRecord{}, &PublishError{Slug: a.Slug, Err: err}
	}
	id, _ := saved["id"].(string)
	if id == "" {
		return domain.PublishRecord{}, &PublishError{Slug: a.Slug, Err: fmt.Errorf("store returned no id")}
	}

	record := domain.PublishRecord{
		ArtifactID:  id,
		Slug:        a.Slug,
		PublishedAt: p.now().UTC(),
		Status:      domain.PublishStatusPublished,
	}

	_, err = p.store.Insert(ctx, TablePublishRecords, ports.Record{
		"run_id":       runID,
		"artifact_id":  record.ArtifactID,
		"slug":         record.Slug,
		"published_at": record.PublishedAt,
		"status":       string(record.Status),
	})
	if err != nil {
		return domain.PublishRecord{}, &PublishError{Slug: a.Slug, ArtifactID: id, Err: err}
	}

	return record, nil
}

// Announce sends a digest of published artifacts to the notifier. Failures are
// logged only; the artifacts are already published.
func (p *Publisher) Announce(ctx context.Context, artifacts []domain.ContentArtifact) {
	if p.notifier == nil || len(artifacts) == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, buildDigestMessage(p.siteURL, artifacts)); err != nil && p.logger != nil {
		p.logger.Warn("publish announcement failed", "artifacts", len(artifacts), "error", err)
	}
}

func artifactRow(runID string, a domain.ContentArtifact) (ports.Record, error) {
	structured, err := json.Marshal(a.StructuredData)
	if err != nil {
		return nil, fmt.Errorf("encode structured data: %w", err)
	}
	signals, err := json.Marshal(a.TrustSignals)
	if err != nil {
		return nil, fmt.Errorf("encode trust signals: %w", err)
	}
	cluster, err := json.Marshal(a.SourceCluster)
	if err != nil {
		return nil, fmt.Errorf("encode source cluster: %w", err)
	}

	return ports.Record{
		"run_id":          runID,
		"slug":            a.Slug,
		"title":           a.Title,
		"body":            a.Body,
		"pillar_keyword":  a.SourceCluster.PillarKeyword,
		"keywords":        a.StructuredData.Keywords,
		"structured_data": string(structured),
		"trust_signals":   string(signals),
		"source_cluster":  string(cluster),
		"generated_at":    a.GeneratedAt,
	}, nil
}

func buildDigestMessage(siteURL string, artifacts []domain.ContentArtifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Published %d new article(s)\n\n", len(artifacts))
	for _, a := range artifacts {
		link := a.Slug
		if siteURL != "" {
			link = strings.TrimRight(siteURL, "/") + "/" + a.Slug
		}
		fmt.Fprintf(&b, "- %s\n%s\n", a.Title, link)
	}
	return b.String()
}
