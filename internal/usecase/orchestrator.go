package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ContentMachine/internal/domain"
	"ContentMachine/internal/ports"
	"ContentMachine/internal/progress"
	"ContentMachine/internal/scanner"
)

// Deps wires the external capabilities into the orchestrator. They are
// constructed once per process and shared by every run.
type Deps struct {
	Registry  *scanner.Registry
	Generator ports.TextGenerator
	Store     ports.Store
	Notifier  ports.Notifier
	Logger    *slog.Logger
}

// Options configures what a run collects and how it writes.
type Options struct {
	Sources []SourceSpec
	Workers int
	Author  string
	SiteURL string
}

// RunRequest parameterizes one run. FocusHint applies to sources without
// their own hint; Sources, when set, replaces the configured list.
type RunRequest struct {
	FocusHint string
	Sources   []SourceSpec
}

// Result holds every stage's output for one run.
type Result struct {
	RunID         string
	Records       []domain.SignalRecord
	Research      []domain.ResearchDatum
	Clusters      []domain.TopicCluster
	Artifacts     []domain.ContentArtifact
	Published     []domain.PublishRecord
	FailedSources []string
}

// Summary condenses the result into the completed event payload.
func (r *Result) Summary(sources int) domain.Summary {
	return domain.Summary{
		RunID:         r.RunID,
		Sources:       sources,
		FailedSources: r.FailedSources,
		SignalRecords: len(r.Records),
		ResearchData:  len(r.Research),
		Clusters:      len(r.Clusters),
		Artifacts:     len(r.Artifacts),
		Published:     len(r.Published),
	}
}

// ArtifactReport is the payload of per-artifact generating and publishing events.
type ArtifactReport struct {
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Words      int    `json:"words,omitempty"`
	ArtifactID string `json:"artifactId,omitempty"`
}

// Orchestrator runs the collect, analyze, plan, generate, optimize, publish
// pipeline, one stage at a time.
type Orchestrator struct {
	opts        Options
	collector   *CollectStage
	synthesizer *Synthesizer
	planner     *Planner
	generator   *Generator
	optimizer   *Optimizer
	publisher   *Publisher
	logger      *slog.Logger
}

// NewOrchestrator constructs every stage from deps.
func NewOrchestrator(deps Deps, opts Options) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		opts:        opts,
		collector:   NewCollectStage(deps.Registry, logger.With("stage", "collecting")),
		synthesizer: NewSynthesizer(deps.Generator, logger.With("stage", "analyzing")),
		planner:     NewPlanner(deps.Generator, logger.With("stage", "planning")),
		generator:   NewGenerator(deps.Generator, opts.Workers, logger.With("stage", "generating")),
		optimizer:   NewOptimizer(opts.Author, opts.SiteURL),
		publisher:   NewPublisher(deps.Store, deps.Notifier, opts.SiteURL, logger.With("stage", "publishing")),
		logger:      logger,
	}
}

// Run is the handle of one started run.
type Run struct {
	ID string

	channel *progress.Channel
	stages  *stageMachine
	logger  *slog.Logger
	done    chan struct{}
	percent int
	result  *Result
	err     error
}

// Subscribe returns the run's progress events from the first one, ending with
// the terminal completed or error event.
func (r *Run) Subscribe(ctx context.Context) iter.Seq[domain.ProgressEvent] {
	return r.channel.Subscribe(ctx)
}

// Events returns a snapshot of the events emitted so far.
func (r *Run) Events() []domain.ProgressEvent {
	return r.channel.Events()
}

// Stage returns the current state of the run.
func (r *Run) Stage() domain.Stage {
	return r.stages.Current()
}

// Wait blocks until the run terminates. On failure the result holds what the
// stages before the failing one produced.
func (r *Run) Wait() (*Result, error) {
	<-r.done
	return r.result, r.err
}

// Start launches a run in the background and returns its handle immediately.
func (o *Orchestrator) Start(ctx context.Context, req RunRequest) *Run {
	id := uuid.NewString()
	logger := o.logger.With("run", id)
	r := &Run{
		ID:      id,
		channel: progress.NewChannel(logger),
		stages:  newStageMachine(),
		logger:  logger,
		done:    make(chan struct{}),
		result:  &Result{RunID: id},
	}
	go o.execute(ctx, r, req)
	return r
}

// Execute starts a run and waits for it.
func (o *Orchestrator) Execute(ctx context.Context, req RunRequest) (*Result, error) {
	return o.Start(ctx, req).Wait()
}

func (o *Orchestrator) execute(ctx context.Context, r *Run, req RunRequest) {
	defer close(r.done)
	defer func() {
		if rec := recover(); rec != nil {
			r.fail(r.stages.Current(), fmt.Errorf("panic: %v", rec), domain.Failure{})
		}
	}()

	res := r.result
	sources := o.sourcesFor(req)

	r.enter(domain.StageCollecting)
	r.emit(domain.StageCollecting, 0, fmt.Sprintf("collecting from %d source(s)", len(sources)), nil)
	for i, spec := range sources {
		records, report := o.collector.Collect(ctx, spec)
		res.Records = append(res.Records, records...)
		msg := fmt.Sprintf("%s: %d record(s)", spec.Name, report.Records)
		if report.Error != "" {
			res.FailedSources = append(res.FailedSources, spec.Name)
			msg = fmt.Sprintf("%s: unavailable", spec.Name)
		}
		r.emit(domain.StageCollecting, span(0, 20, i+1, len(sources)), msg, report)
	}
	if r.interrupted(ctx, domain.StageCollecting, domain.Failure{}) {
		return
	}

	r.enter(domain.StageAnalyzing)
	r.emit(domain.StageAnalyzing, 22, fmt.Sprintf("synthesizing %d signal record(s)", len(res.Records)), nil)
	data, err := o.synthesizer.Synthesize(ctx, res.Records)
	if err != nil {
		r.fail(domain.StageAnalyzing, err, domain.Failure{})
		return
	}
	res.Research = data
	r.emit(domain.StageAnalyzing, 30, fmt.Sprintf("synthesized %d research datum(s)", len(data)), nil)
	if r.interrupted(ctx, domain.StageAnalyzing, domain.Failure{}) {
		return
	}

	r.enter(domain.StagePlanning)
	r.emit(domain.StagePlanning, 32, fmt.Sprintf("planning clusters from %d research datum(s)", len(data)), nil)
	clusters, err := o.planner.Plan(ctx, data)
	if err != nil {
		r.fail(domain.StagePlanning, err, domain.Failure{})
		return
	}
	res.Clusters = clusters
	r.emit(domain.StagePlanning, 40, fmt.Sprintf("planned %d cluster(s)", len(clusters)), nil)
	if r.interrupted(ctx, domain.StagePlanning, domain.Failure{}) {
		return
	}

	r.enter(domain.StageGenerating)
	r.emit(domain.StageGenerating, 40, fmt.Sprintf("generating %d artifact(s)", len(clusters)), nil)
	artifacts, err := o.generator.GenerateAll(ctx, clusters, func(done int, a domain.ContentArtifact) {
		r.emit(domain.StageGenerating, span(40, 80, done, len(clusters)), fmt.Sprintf("generated %q", a.Title), ArtifactReport{
			Slug:  a.Slug,
			Title: a.Title,
			Words: len(strings.Fields(a.Body)),
		})
	})
	if err != nil {
		r.fail(domain.StageGenerating, err, domain.Failure{})
		return
	}
	res.Artifacts = artifacts
	if r.interrupted(ctx, domain.StageGenerating, domain.Failure{}) {
		return
	}

	r.enter(domain.StageOptimizing)
	r.emit(domain.StageOptimizing, 82, fmt.Sprintf("optimizing %d artifact(s)", len(artifacts)), nil)
	for i, a := range artifacts {
		optimized, err := o.optimizer.Optimize(a)
		if err != nil {
			r.fail(domain.StageOptimizing, err, domain.Failure{})
			return
		}
		artifacts[i] = optimized
	}
	r.emit(domain.StageOptimizing, 88, fmt.Sprintf("attached structured data to %d artifact(s)", len(artifacts)), nil)

	r.enter(domain.StagePublishing)
	r.emit(domain.StagePublishing, 90, fmt.Sprintf("publishing %d artifact(s)", len(artifacts)), nil)
	for i, a := range artifacts {
		if r.interrupted(ctx, domain.StagePublishing, domain.Failure{Published: publishedSlugs(res.Published)}) {
			return
		}
		record, err := o.publisher.Publish(ctx, r.ID, a)
		if err != nil {
			failure := domain.Failure{
				Published: publishedSlugs(res.Published),
				Failed:    a.Slug,
			}
			var pubErr *PublishError
			if errors.As(err, &pubErr) {
				failure.Orphaned = pubErr.ArtifactID
			}
			r.fail(domain.StagePublishing, err, failure)
			return
		}
		res.Published = append(res.Published, record)
		r.emit(domain.StagePublishing, span(90, 99, i+1, len(artifacts)), fmt.Sprintf("published %s", a.Slug), ArtifactReport{
			Slug:       a.Slug,
			Title:      a.Title,
			ArtifactID: record.ArtifactID,
		})
	}
	o.publisher.Announce(ctx, artifacts)

	r.enter(domain.StageCompleted)
	summary := res.Summary(len(sources))
	if err := r.channel.Complete(fmt.Sprintf("published %d artifact(s)", len(res.Published)), summary); err != nil {
		r.logger.Error("complete run", "error", err)
	}
	r.logger.Info("run completed", "records", summary.SignalRecords, "clusters", summary.Clusters, "published", summary.Published)
}

func (o *Orchestrator) sourcesFor(req RunRequest) []SourceSpec {
	base := o.opts.Sources
	if len(req.Sources) > 0 {
		base = req.Sources
	}
	sources := make([]SourceSpec, len(base))
	for i, spec := range base {
		if spec.FocusHint == "" {
			spec.FocusHint = req.FocusHint
		}
		sources[i] = spec
	}
	return sources
}

func (r *Run) enter(stage domain.Stage) {
	if err := r.stages.Advance(stage); err != nil {
		panic(err)
	}
	r.logger.Info("stage started", "stage", stage)
}

func (r *Run) emit(stage domain.Stage, percent int, message string, payload any) {
	r.percent = percent
	if err := r.channel.Emit(stage, percent, message, payload); err != nil {
		r.logger.Error("emit progress", "stage", stage, "error", err)
	}
}

// interrupted fails the run in stage when ctx is done.
func (r *Run) interrupted(ctx context.Context, stage domain.Stage, failure domain.Failure) bool {
	err := ctx.Err()
	if err == nil {
		return false
	}
	r.fail(stage, fmt.Errorf("run interrupted: %w", err), failure)
	return true
}

func (r *Run) fail(stage domain.Stage, err error, failure domain.Failure) {
	r.err = err
	if advErr := r.stages.Advance(domain.StageError); advErr != nil {
		r.logger.Error("mark run failed", "error", advErr)
	}

	failure.RunID = r.ID
	failure.Stage = stage
	failure.Cause = err.Error()
	if emitErr := r.channel.Fail(stage, r.percent, err.Error(), failure); emitErr != nil {
		r.logger.Error("emit failure", "error", emitErr)
	}
	r.logger.Error("run failed", "stage", stage, "error", err)
}

// span maps step done of total onto the percent range [from, to].
func span(from, to, done, total int) int {
	if total <= 0 {
		return to
	}
	return from + (to-from)*done/total
}

func publishedSlugs(records []domain.PublishRecord) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Slug)
	}
	return out
}
