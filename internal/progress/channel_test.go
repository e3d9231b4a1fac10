package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentMachine/internal/domain"
)

func collect(t *testing.T, c *Channel) []domain.ProgressEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var got []domain.ProgressEvent
	for ev := range c.Subscribe(ctx) {
		got = append(got, ev)
	}
	return got
}

func TestChannel_LateSubscriberReplaysAllEvents(t *testing.T) {
	c := NewChannel(nil)
	require.NoError(t, c.Emit(domain.StageCollecting, 5, "github", nil))
	require.NoError(t, c.Emit(domain.StageAnalyzing, 25, "synthesizing", nil))
	require.NoError(t, c.Complete("done", domain.Summary{Artifacts: 1}))

	got := collect(t, c)
	require.Len(t, got, 3)
	assert.Equal(t, domain.StageCollecting, got[0].Stage)
	assert.Equal(t, domain.StageAnalyzing, got[1].Stage)
	assert.Equal(t, domain.EventCompleted, got[2].Status)
	assert.Equal(t, 100, got[2].Percent)

	for i, ev := range got {
		assert.Equal(t, i, ev.Seq)
	}
}

func TestChannel_SequenceIsRestartable(t *testing.T) {
	c := NewChannel(nil)
	require.NoError(t, c.Emit(domain.StageCollecting, 10, "one", nil))
	require.NoError(t, c.Fail(domain.StageAnalyzing, 25, "bad json", nil))

	seq := c.Subscribe(context.Background())

	var first, second []string
	for ev := range seq {
		first = append(first, ev.Message)
	}
	for ev := range seq {
		second = append(second, ev.Message)
	}
	assert.Equal(t, []string{"one", "bad json"}, first)
	assert.Equal(t, first, second)
}

func TestChannel_LiveSubscriberReceivesFutureEvents(t *testing.T) {
	c := NewChannel(nil)

	var (
		wg  sync.WaitGroup
		got []domain.ProgressEvent
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		got = collect(t, c)
	}()

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Emit(domain.StageGenerating, 40+i, "cluster", nil))
	}
	require.NoError(t, c.Complete("done", nil))
	wg.Wait()

	require.Len(t, got, 6)
	assert.True(t, got[5].Terminal())
}

func TestChannel_RejectsEmitAfterTerminal(t *testing.T) {
	c := NewChannel(nil)
	require.NoError(t, c.Complete("done", nil))

	assert.ErrorIs(t, c.Emit(domain.StagePublishing, 90, "late", nil), domain.ErrChannelClosed)
	assert.ErrorIs(t, c.Fail(domain.StagePublishing, 90, "late", nil), domain.ErrChannelClosed)
	assert.ErrorIs(t, c.Complete("again", nil), domain.ErrChannelClosed)

	assert.Len(t, c.Events(), 1)
	select {
	case <-c.Done():
	default:
		t.Fatal("done channel should be closed after terminal event")
	}
}

func TestChannel_EmitRejectsTerminalStages(t *testing.T) {
	c := NewChannel(nil)
	assert.Error(t, c.Emit(domain.StageCompleted, 100, "nope", nil))
	assert.Error(t, c.Emit(domain.StageError, 0, "nope", nil))
	assert.Empty(t, c.Events())
}

func TestChannel_EmitNeverBlocksWithoutSubscribers(t *testing.T) {
	c := NewChannel(nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			_ = c.Emit(domain.StageGenerating, 50, "tick", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked without subscribers")
	}
	assert.Len(t, c.Events(), 1000)
}

func TestChannel_SubscribeStopsOnContextCancel(t *testing.T) {
	c := NewChannel(nil)
	require.NoError(t, c.Emit(domain.StageCollecting, 1, "start", nil))

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan int)
	go func() {
		n := 0
		for range c.Subscribe(ctx) {
			n++
		}
		finished <- n
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case n := <-finished:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop after cancel")
	}
}

func TestChannel_PercentIsClamped(t *testing.T) {
	c := NewChannel(nil)
	require.NoError(t, c.Emit(domain.StageCollecting, -5, "low", nil))
	require.NoError(t, c.Emit(domain.StageCollecting, 150, "high", nil))

	events := c.Events()
	assert.Equal(t, 0, events[0].Percent)
	assert.Equal(t, 100, events[1].Percent)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		event  domain.ProgressEvent
		expect string
	}{
		{
			name:   "progress",
			event:  domain.ProgressEvent{Stage: domain.StageCollecting, Status: domain.EventProgress, Percent: 5, Message: "github: 3 records"},
			expect: "[  5%] ● collecting: github: 3 records",
		},
		{
			name:   "completed",
			event:  domain.ProgressEvent{Stage: domain.StageCompleted, Status: domain.EventCompleted, Percent: 100, Message: "published 2 artifacts"},
			expect: "[100%] ✓ published 2 artifacts",
		},
		{
			name:   "error",
			event:  domain.ProgressEvent{Stage: domain.StageAnalyzing, Status: domain.EventError, Percent: 25, Message: "bad json"},
			expect: "[ 25%] ✗ analyzing failed: bad json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Format(tt.event))
		})
	}
}
