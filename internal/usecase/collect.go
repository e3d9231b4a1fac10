package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ContentMachine/internal/domain"
	"ContentMachine/internal/scanner"
)

// SourceSpec configures one collector invocation.
type SourceSpec struct {
	Name      string
	Collector string
	FocusHint string
	Limit     int
	Options   map[string]string
}

// SourceReport is the per-source outcome carried in collecting events.
type SourceReport struct {
	Source  string `json:"source"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
}

// CollectStage runs registered collectors and normalizes their records.
type CollectStage struct {
	registry *scanner.Registry
	logger   *slog.Logger
}

// NewCollectStage wires the collector registry.
func NewCollectStage(reg *scanner.Registry, logger *slog.Logger) *CollectStage {
	return &CollectStage{registry: reg, logger: logger}
}

// Collect runs one source. It never fails the caller: an unavailable source is
// logged and yields no records, with the cause returned in the report. Errors
// caused by ctx ending are reported as the context error, not as an
// unavailable source.
func (c *CollectStage) Collect(ctx context.Context, spec SourceSpec) ([]domain.SignalRecord, SourceReport) {
	report := SourceReport{Source: spec.Name}

	records, err := c.run(ctx, spec)
	if err != nil && ctx.Err() != nil {
		c.warn("source interrupted", "source", spec.Name, "collector", spec.Collector, "error", err)
		report.Error = ctx.Err().Error()
		return nil, report
	}
	if err != nil {
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}
		c.warn("source unavailable", "source", spec.Name, "collector", spec.Collector, "error", err)
		report.Error = err.Error()
		return nil, report
	}

	records = normalizeRecords(spec.Name, records)
	report.Records = len(records)
	c.debug("source collected", "source", spec.Name, "records", len(records))
	return records, report
}

func (c *CollectStage) run(ctx context.Context, spec SourceSpec) (records []domain.SignalRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collector %s panicked: %v", spec.Collector, r)
		}
	}()

	if c.registry == nil {
		return nil, fmt.Errorf("collector registry is not configured")
	}
	collector, err := c.registry.Resolve(spec.Collector)
	if err != nil {
		return nil, err
	}

	return collector.Collect(ctx, scanner.Request{
		SourceID:  spec.Name,
		FocusHint: spec.FocusHint,
		Limit:     spec.Limit,
		Options:   spec.Options,
	})
}

// normalizeRecords stamps source and stable ids, cleans tags and fills
// missing classifications. Records without text are dropped.
func normalizeRecords(source string, in []domain.SignalRecord) []domain.SignalRecord {
	out := make([]domain.SignalRecord, 0, len(in))
	for _, r := range in {
		r.RawText = strings.TrimSpace(r.RawText)
		if r.RawText == "" {
			continue
		}
		r.Source = source
		r.ID = fmt.Sprintf("%s-%d", source, len(out)+1)
		r.Tags = normalizeTerms(r.Tags)
		if !r.IntentClass.Valid() {
			r.IntentClass = domain.IntentInformational
		}
		if !r.Priority.Valid() {
			r.Priority = domain.PriorityMedium
		}
		out = append(out, r)
	}
	return out
}

// normalizeTerms lowercases, trims and deduplicates terms, keeping order.
func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// DedupeRecords collapses records whose whitespace- and case-normalized text
// is identical, keeping the first occurrence.
func DedupeRecords(records []domain.SignalRecord) []domain.SignalRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.SignalRecord, 0, len(records))
	for _, r := range records {
		key := strings.ToLower(strings.Join(strings.Fields(r.RawText), " "))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func (c *CollectStage) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *CollectStage) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
