package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ContentMachine/internal/domain"
	"ContentMachine/internal/ports"
)

type synthesisResponse struct {
	Research []researchItem `json:"research"`
}

type researchItem struct {
	Keywords     []string `json:"keywords"`
	Intent       string   `json:"intent"`
	ClusterLabel string   `json:"clusterLabel"`
	Entities     []string `json:"entities"`
	SourceIDs    []string `json:"sourceIds"`
}

// Synthesizer merges signal records into research data with one model call.
type Synthesizer struct {
	gen    ports.TextGenerator
	logger *slog.Logger
}

// NewSynthesizer wires the generative capability.
func NewSynthesizer(gen ports.TextGenerator, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{gen: gen, logger: logger}
}

// Synthesize deduplicates records, asks the model to group them and validates
// the answer. Entries that reference unknown records, or whose keywords share
// nothing with the tags of the records they cite, are dropped. Output that
// cannot be parsed fails the whole stage.
func (s *Synthesizer) Synthesize(ctx context.Context, records []domain.SignalRecord) ([]domain.ResearchDatum, error) {
	unique := DedupeRecords(records)
	if len(unique) == 0 {
		return nil, nil
	}

	raw, err := s.gen.Complete(ctx, synthesisPrompt(unique), synthesisSchemaHint)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	resp, err := decodeStrict[synthesisResponse](domain.StageAnalyzing, raw)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.SignalRecord, len(unique))
	for _, r := range unique {
		byID[r.ID] = r
	}

	data := make([]domain.ResearchDatum, 0, len(resp.Research))
	for i, item := range resp.Research {
		if err := item.validate(); err != nil {
			return nil, schemaErr(domain.StageAnalyzing, fmt.Sprintf("research[%d]", i), err)
		}

		sources, tags := resolveSources(item.SourceIDs, byID)
		if len(sources) == 0 {
			s.warn("dropping research datum without known sources", "index", i, "sourceIds", item.SourceIDs)
			continue
		}
		keywords := normalizeTerms(item.Keywords)
		if !overlaps(keywords, tags) {
			s.warn("dropping research datum with keywords outside source tags", "index", i, "keywords", keywords)
			continue
		}

		data = append(data, domain.ResearchDatum{
			ID:           fmt.Sprintf("research-%d", len(data)+1),
			Keywords:     keywords,
			Intent:       domain.IntentClass(item.Intent),
			ClusterLabel: strings.TrimSpace(item.ClusterLabel),
			Entities:     trimAll(item.Entities),
			SourceIDs:    sources,
		})
	}

	if len(data) == 0 {
		return nil, schemaErr(domain.StageAnalyzing, "no research datum traced back to the input records", nil)
	}
	return data, nil
}

func (item researchItem) validate() error {
	switch {
	case len(item.Keywords) == 0:
		return fmt.Errorf("keywords are required")
	case len(item.SourceIDs) == 0:
		return fmt.Errorf("sourceIds are required")
	case strings.TrimSpace(item.ClusterLabel) == "":
		return fmt.Errorf("clusterLabel is required")
	case !domain.IntentClass(item.Intent).Valid():
		return fmt.Errorf("unknown intent %q", item.Intent)
	}
	return nil
}

// resolveSources keeps the known ids (deduplicated, in order) and returns the
// union of their tags.
func resolveSources(ids []string, byID map[string]domain.SignalRecord) ([]string, map[string]struct{}) {
	tags := map[string]struct{}{}
	seen := map[string]struct{}{}
	var known []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		rec, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		known = append(known, id)
		for _, t := range rec.Tags {
			tags[t] = struct{}{}
		}
	}
	return known, tags
}

func overlaps(keywords []string, tags map[string]struct{}) bool {
	for _, k := range keywords {
		if _, ok := tags[k]; ok {
			return true
		}
	}
	return false
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (s *Synthesizer) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
