package orchestrator

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compozy/tagrelease/internal/domain"
	"github.com/compozy/tagrelease/internal/repository"
)

// Step is a single step of the release workflow.
type Step struct {
	Name    domain.StepName
	Execute func(ctx context.Context) error
}

// StepRunner runs steps in order, stopping at the first failure, and journals
// progress after every transition. Journal failures are logged, never returned.
type StepRunner struct {
	journal repository.JournalRepository
	record  *domain.RunRecord
	steps   []Step
	logger  *zap.Logger
}

// NewStepRunner creates a runner with a fresh session. journal may be nil.
func NewStepRunner(journal repository.JournalRepository, logger *zap.Logger) *StepRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StepRunner{
		journal: journal,
		record:  domain.NewRunRecord(uuid.New().String()),
		logger:  logger,
	}
}

// AddStep appends a step.
func (r *StepRunner) AddStep(step Step) {
	r.steps = append(r.steps, step)
}

// Record returns the run record being journaled.
func (r *StepRunner) Record() *domain.RunRecord {
	return r.record
}

// Execute runs every step. The failing step's error is returned unchanged so
// abort messages reach the user verbatim.
func (r *StepRunner) Execute(ctx context.Context) error {
	r.save(ctx)
	for _, step := range r.steps {
		r.record.MarkStepStarted(step.Name)
		r.save(ctx)
		r.logger.Debug("running step", zap.String("step", string(step.Name)))
		if err := step.Execute(ctx); err != nil {
			r.record.MarkStepFailed(step.Name, err)
			r.save(ctx)
			r.logger.Debug("step stopped the run",
				zap.String("step", string(step.Name)),
				zap.Bool("abort", domain.IsAbort(err)),
				zap.Error(err))
			return err
		}
		r.record.MarkStepCompleted(step.Name)
		r.save(ctx)
	}
	r.record.MarkCompleted()
	r.save(ctx)
	return nil
}

func (r *StepRunner) save(ctx context.Context) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Save(ctx, r.record); err != nil {
		r.logger.Warn("failed to save run record",
			zap.String("session_id", r.record.SessionID),
			zap.Error(err))
	}
}
