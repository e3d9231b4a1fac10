package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"ContentMachine/internal/domain"
	"ContentMachine/internal/ports"
	"ContentMachine/internal/scanner"
)

// fakeGenerator routes Complete calls by schema hint and streams canned bodies.
type fakeGenerator struct {
	mu         sync.Mutex
	synthesis  func(prompt string) (string, error)
	planning   func(prompt string) (string, error)
	stream     func(prompt string) ([]string, error)
	completes  int
	streams    int
	maxStreams int
	active     int
	delay      time.Duration
}

var _ ports.TextGenerator = (*fakeGenerator)(nil)

func (f *fakeGenerator) Complete(_ context.Context, prompt, schemaHint string) (string, error) {
	f.mu.Lock()
	f.completes++
	f.mu.Unlock()

	switch schemaHint {
	case synthesisSchemaHint:
		if f.synthesis == nil {
			return "", errors.New("no synthesis response configured")
		}
		return f.synthesis(prompt)
	case planningSchemaHint:
		if f.planning == nil {
			return "", errors.New("no planning response configured")
		}
		return f.planning(prompt)
	}
	return "", fmt.Errorf("unexpected schema hint %q", schemaHint)
}

func (f *fakeGenerator) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f.mu.Lock()
		f.streams++
		f.active++
		if f.active > f.maxStreams {
			f.maxStreams = f.active
		}
		f.mu.Unlock()
		defer func() {
			f.mu.Lock()
			f.active--
			f.mu.Unlock()
		}()

		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				yield("", ctx.Err())
				return
			}
		}

		if f.stream == nil {
			yield("", errors.New("no stream configured"))
			return
		}
		tokens, err := f.stream(prompt)
		for _, tok := range tokens {
			if !yield(tok, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

func (f *fakeGenerator) counts() (completes, streams int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completes, f.streams
}

// articleTokens splits a small article about the title in the prompt into tokens.
func articleTokens(prompt string) ([]string, error) {
	title := "Untitled"
	if start := strings.Index(prompt, "titled \""); start >= 0 {
		rest := prompt[start+len("titled \""):]
		if end := strings.Index(rest, "\""); end >= 0 {
			title = rest[:end]
		}
	}
	body := "# " + title + "\n\n" +
		"We deployed this in 2024 and learned a lot.\n\n" +
		"```go\nfmt.Println(\"hi\")\n```\n\n" +
		"## What is " + title + "?\n\n" +
		"It is a pattern worth knowing. See https://go.dev/doc.\n"
	return strings.SplitAfter(body, " "), nil
}

// fakeCollector returns canned records or an error.
type fakeCollector struct {
	name    string
	records []domain.SignalRecord
	err     error
	panics  bool
}

func (c *fakeCollector) Name() string { return c.name }

func (c *fakeCollector) Collect(_ context.Context, _ scanner.Request) ([]domain.SignalRecord, error) {
	if c.panics {
		panic("collector exploded")
	}
	if c.err != nil {
		return nil, c.err
	}
	out := make([]domain.SignalRecord, len(c.records))
	copy(out, c.records)
	return out, nil
}

// fakeStore records inserts and can fail a given insert number (1-based).
type fakeStore struct {
	mu     sync.Mutex
	rows   map[string][]ports.Record
	calls  int
	failOn int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string][]ports.Record{}}
}

func (s *fakeStore) Insert(_ context.Context, table string, record ports.Record) (ports.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.failOn > 0 && s.calls == s.failOn {
		return nil, errors.New("connection reset")
	}
	saved := ports.Record{}
	for k, v := range record {
		saved[k] = v
	}
	saved["id"] = fmt.Sprintf("%s-%d", table, len(s.rows[table])+1)
	s.rows[table] = append(s.rows[table], saved)
	return saved, nil
}

func (s *fakeStore) count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[table])
}

type fakeNotifier struct {
	mu      sync.Mutex
	digests []string
	err     error
}

func (n *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.digests = append(n.digests, digest)
	return n.err
}

func signal(text string, tags ...string) domain.SignalRecord {
	return domain.SignalRecord{
		RawText:     text,
		Tags:        tags,
		IntentClass: domain.IntentInformational,
		Priority:    domain.PriorityHigh,
	}
}

const synthesisOK = `{"research":[
  {"keywords":["go","concurrency"],"intent":"informational","clusterLabel":"go concurrency","entities":["Go"],"sourceIds":["github-1","github-2"]},
  {"keywords":["kubernetes"],"intent":"commercial","clusterLabel":"k8s operators","entities":["Kubernetes"],"sourceIds":["reddit-1"]}
]}`

const planningOK = `{"clusters":[
  {"pillarTopic":"Go Concurrency Patterns","pillarKeyword":"go concurrency","subtopics":[{"topic":"worker pools","keywords":["errgroup"],"intent":"informational","contentType":"tutorial","priority":"high"}],"authorityScore":7,"competitionLevel":"medium","businessAlignment":8,"researchIds":["research-1"]},
  {"pillarTopic":"Kubernetes Operators","pillarKeyword":"kubernetes operators","subtopics":[],"authorityScore":6,"competitionLevel":"high","businessAlignment":5,"researchIds":["research-2"]}
]}`

func twoSourceRegistry() *scanner.Registry {
	reg := scanner.NewRegistry()
	reg.Register(&fakeCollector{name: "github", records: []domain.SignalRecord{
		signal("golang/sync: errgroup patterns for concurrency", "Go", "concurrency"),
		signal("generics in go 1.25", "go", "generics"),
	}})
	reg.Register(&fakeCollector{name: "reddit", records: []domain.SignalRecord{
		signal("Writing kubernetes operators in Go?", "kubernetes", "operators"),
	}})
	return reg
}

func twoSources() []SourceSpec {
	return []SourceSpec{
		{Name: "github", Collector: "github"},
		{Name: "reddit", Collector: "reddit"},
	}
}

func happyGenerator() *fakeGenerator {
	return &fakeGenerator{
		synthesis: func(string) (string, error) { return synthesisOK, nil },
		planning:  func(string) (string, error) { return planningOK, nil },
		stream:    articleTokens,
	}
}
