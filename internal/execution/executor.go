package execution

import (
	"context"
	"time"

	"bugtrack/internal/domain"
)

// Executor evaluates test outcomes against the tracker and returns one
// decision per outcome, in input order
type Executor interface {
	Execute(ctx context.Context, outcomes []domain.TestOutcome) ([]domain.Decision, time.Duration, error)
}
