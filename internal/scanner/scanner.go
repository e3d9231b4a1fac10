package scanner

import (
	"context"
	"fmt"
	"sort"

	"ContentMachine/internal/domain"
)

// DefaultLimit caps records per source when the request leaves Limit unset.
const DefaultLimit = 25

// Request carries all parameters required to collect from one source.
type Request struct {
	SourceID  string
	FocusHint string
	Limit     int
	Options   map[string]string
}

// MaxRecords resolves the effective record cap.
func (r Request) MaxRecords() int {
	if r.Limit <= 0 {
		return DefaultLimit
	}
	return r.Limit
}

// Collector captures a single source adapter (GitHub, Reddit, etc.).
type Collector interface {
	Name() string
	Collect(ctx context.Context, req Request) ([]domain.SignalRecord, error)
}

// Registry keeps a mapping from collector names to their implementations.
type Registry struct {
	collectors map[string]Collector
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: map[string]Collector{}}
}

// Register adds or replaces a collector implementation.
func (r *Registry) Register(collector Collector) {
	if r.collectors == nil {
		r.collectors = map[string]Collector{}
	}
	r.collectors[collector.Name()] = collector
}

// Resolve returns a collector by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Collector, error) {
	if collector, ok := r.collectors[name]; ok {
		return collector, nil
	}
	return nil, fmt.Errorf("collector %s is not registered", name)
}

// Names lists registered collectors in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
