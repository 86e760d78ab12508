package execution

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"bugtrack/internal/domain"
	"bugtrack/internal/issue"
)

// Processor runs the issue lifecycle of one outcome
type Processor interface {
	Process(ctx context.Context, outcome domain.TestOutcome) domain.Decision
}

// Runner processes a single outcome on behalf of a worker
type Runner struct {
	processor Processor
	logger    zerolog.Logger
}

// NewRunner creates a new Runner
func NewRunner(processor Processor, logger zerolog.Logger) *Runner {
	return &Runner{processor: processor, logger: logger}
}

// Run processes one outcome. A panic in a tracker backend is turned into a
// failed decision so that the rest of the batch goes on.
func (r *Runner) Run(ctx context.Context, outcome domain.TestOutcome, workerID int) (decision domain.Decision) {
	logger := r.logger.With().
		Int("worker", workerID).
		Str("test", outcome.TestName).
		Logger()

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("outcome processing panicked")
			decision = failedDecision(outcome, fmt.Sprintf("panic: %v", p))
		}
	}()

	if err := ctx.Err(); err != nil {
		return failedDecision(outcome, err.Error())
	}

	logger.Debug().Bool("passed", outcome.Passed).Msg("processing outcome")
	return r.processor.Process(logger.WithContext(ctx), outcome)
}

func failedDecision(outcome domain.TestOutcome, reason string) domain.Decision {
	return domain.Decision{
		TestName: outcome.TestName,
		Suite:    outcome.Suite,
		Summary:  issue.Summary(issue.TestIDOf(outcome)),
		Passed:   outcome.Passed,
		Kind:     domain.ActionNone,
		Source:   outcome.SourcePath,
		Error:    reason,
	}
}
