package progress

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"ContentMachine/internal/domain"
)

// Channel is an append-only, replayable stream of progress events for one run.
// Emitters never block on subscribers.
type Channel struct {
	mu     sync.Mutex
	events []domain.ProgressEvent
	notify chan struct{}
	done   chan struct{}
	closed bool
	logger *slog.Logger
	now    func() time.Time
}

// NewChannel creates an empty channel. logger may be nil.
func NewChannel(logger *slog.Logger) *Channel {
	return &Channel{
		notify: make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
		now:    time.Now,
	}
}

// Emit appends a progress update for stage.
func (c *Channel) Emit(stage domain.Stage, percent int, message string, payload any) error {
	if stage.Terminal() {
		return fmt.Errorf("emit %s: use Complete or Fail for terminal stages", stage)
	}
	return c.append(domain.ProgressEvent{
		Stage:   stage,
		Status:  domain.EventProgress,
		Percent: percent,
		Message: message,
		Payload: payload,
	})
}

// Complete appends the terminal completed event at 100%.
func (c *Channel) Complete(message string, payload any) error {
	return c.append(domain.ProgressEvent{
		Stage:   domain.StageCompleted,
		Status:  domain.EventCompleted,
		Percent: 100,
		Message: message,
		Payload: payload,
	})
}

// Fail appends the terminal error event. stage is the stage that failed.
func (c *Channel) Fail(stage domain.Stage, percent int, message string, payload any) error {
	return c.append(domain.ProgressEvent{
		Stage:   stage,
		Status:  domain.EventError,
		Percent: percent,
		Message: message,
		Payload: payload,
	})
}

func (c *Channel) append(ev domain.ProgressEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		if c.logger != nil {
			c.logger.Error("emit after terminal event rejected",
				"stage", ev.Stage, "status", ev.Status, "message", ev.Message)
		}
		return domain.ErrChannelClosed
	}

	ev.Seq = len(c.events)
	ev.Percent = clampPercent(ev.Percent)
	ev.Timestamp = c.now()
	c.events = append(c.events, ev)

	close(c.notify)
	c.notify = make(chan struct{})
	if ev.Terminal() {
		c.closed = true
		close(c.done)
	}
	return nil
}

// Subscribe returns the event sequence from the first event. Iteration blocks
// for new events until the terminal event is yielded or ctx is done. Each
// call to the returned sequence restarts from the beginning.
func (c *Channel) Subscribe(ctx context.Context) iter.Seq[domain.ProgressEvent] {
	return func(yield func(domain.ProgressEvent) bool) {
		next := 0
		for {
			c.mu.Lock()
			batch := c.events[next:len(c.events):len(c.events)]
			closed := c.closed
			notify := c.notify
			c.mu.Unlock()

			for _, ev := range batch {
				if !yield(ev) {
					return
				}
				next++
			}
			if len(batch) > 0 {
				continue
			}
			if closed {
				return
			}

			select {
			case <-notify:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Events returns a snapshot of everything emitted so far.
func (c *Channel) Events() []domain.ProgressEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ProgressEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Last returns the most recent event.
func (c *Channel) Last() (domain.ProgressEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return domain.ProgressEvent{}, false
	}
	return c.events[len(c.events)-1], true
}

// Done is closed once the terminal event has been appended.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Terminated reports whether the terminal event has been appended.
func (c *Channel) Terminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func clampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// Format renders an event as a single human-readable status line.
func Format(ev domain.ProgressEvent) string {
	switch ev.Status {
	case domain.EventCompleted:
		return fmt.Sprintf("[%3d%%] ✓ %s", ev.Percent, ev.Message)
	case domain.EventError:
		return fmt.Sprintf("[%3d%%] ✗ %s failed: %s", ev.Percent, ev.Stage, ev.Message)
	default:
		return fmt.Sprintf("[%3d%%] ● %s: %s", ev.Percent, ev.Stage, ev.Message)
	}
}
