package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ContentMachine/internal/content"
	"ContentMachine/internal/domain"
	"ContentMachine/internal/ports"
)

// DefaultWorkers is the generation concurrency used when none is configured.
const DefaultWorkers = 1

// Generator turns each topic cluster into one streamed content artifact.
type Generator struct {
	gen     ports.TextGenerator
	workers int
	logger  *slog.Logger
	now     func() time.Time
}

// NewGenerator wires the generative capability. workers bounds how many
// clusters are generated at once.
func NewGenerator(gen ports.TextGenerator, workers int, logger *slog.Logger) *Generator {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Generator{gen: gen, workers: workers, logger: logger, now: time.Now}
}

// Generate streams the article body for cluster and attaches heuristic trust
// signals. slug must already be unique within the run.
func (g *Generator) Generate(ctx context.Context, cluster domain.TopicCluster, slug string) (domain.ContentArtifact, error) {
	title := content.Title(cluster.PillarTopic)

	var body strings.Builder
	for delta, err := range g.gen.Stream(ctx, generationPrompt(cluster, title)) {
		if err != nil {
			return domain.ContentArtifact{}, fmt.Errorf("generate %s: %w", slug, err)
		}
		body.WriteString(delta)
	}

	text := strings.TrimSpace(body.String())
	if text == "" {
		return domain.ContentArtifact{}, schemaErr(domain.StageGenerating, fmt.Sprintf("empty body for %s", slug), nil)
	}

	return domain.ContentArtifact{
		Title:         title,
		Slug:          slug,
		Body:          text,
		TrustSignals:  content.DeriveTrustSignals(text),
		SourceCluster: cluster,
		GeneratedAt:   g.now().UTC(),
	}, nil
}

// GenerateAll produces one artifact per cluster, in cluster order. Slugs are
// allocated up front in cluster order so collisions get deterministic
// suffixes regardless of scheduling. onDone is invoked once per artifact, in
// completion order, never concurrently. The first failure cancels the rest.
func (g *Generator) GenerateAll(ctx context.Context, clusters []domain.TopicCluster, onDone func(done int, a domain.ContentArtifact)) ([]domain.ContentArtifact, error) {
	slugs := make([]string, len(clusters))
	alloc := content.NewSlugAllocator()
	for i, c := range clusters {
		slugs[i] = alloc.Claim(c.PillarTopic)
	}

	artifacts := make([]domain.ContentArtifact, len(clusters))
	var (
		mu        sync.Mutex
		completed int
	)

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, cluster := range clusters {
		eg.Go(func() error {
			artifact, err := g.Generate(gctx, cluster, slugs[i])
			if err != nil {
				return err
			}
			artifacts[i] = artifact

			mu.Lock()
			defer mu.Unlock()
			completed++
			if g.logger != nil {
				g.logger.Debug("artifact generated", "slug", artifact.Slug, "words", len(strings.Fields(artifact.Body)))
			}
			if onDone != nil {
				onDone(completed, artifact)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}
