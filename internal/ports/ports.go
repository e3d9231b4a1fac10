package ports

import (
	"context"
	"iter"
	"time"
)

// TextGenerator is the generative-text capability consumed by the
// synthesizer, planner and content generator.
type TextGenerator interface {
	// Complete returns the full response; schemaHint describes the expected
	// JSON shape and may be empty.
	Complete(ctx context.Context, prompt, schemaHint string) (string, error)
	// Stream yields text deltas as they arrive. A non-nil error ends the stream.
	Stream(ctx context.Context, prompt string) iter.Seq2[string, error]
}

// Record is a row handed to the store. Values must be JSON- or SQL-friendly.
type Record map[string]any

// Store is the append-only persistence capability.
type Store interface {
	// Insert writes record into table and returns it with its generated "id".
	Insert(ctx context.Context, table string, record Record) (Record, error)
}

// Notifier announces published content to an outbound channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
