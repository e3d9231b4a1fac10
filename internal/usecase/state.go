package usecase

import (
	"fmt"
	"sync"

	"ContentMachine/internal/domain"
)

// stageOrder is the only forward path through a run.
var stageOrder = []domain.Stage{
	domain.StageIdle,
	domain.StageCollecting,
	domain.StageAnalyzing,
	domain.StagePlanning,
	domain.StageGenerating,
	domain.StageOptimizing,
	domain.StagePublishing,
	domain.StageCompleted,
}

// stageMachine enforces at most one active stage and single-direction moves:
// each stage may only advance to its successor, any non-terminal stage may
// move to error, and terminal stages never move again.
type stageMachine struct {
	mu      sync.Mutex
	current domain.Stage
}

func newStageMachine() *stageMachine {
	return &stageMachine{current: domain.StageIdle}
}

func (m *stageMachine) Current() domain.Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *stageMachine) Advance(to domain.Stage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Terminal() {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, m.current, to)
	}
	if to == domain.StageError || to == nextStage(m.current) {
		m.current = to
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, m.current, to)
}

func nextStage(s domain.Stage) domain.Stage {
	for i, st := range stageOrder {
		if st == s && i+1 < len(stageOrder) {
			return stageOrder[i+1]
		}
	}
	return ""
}
