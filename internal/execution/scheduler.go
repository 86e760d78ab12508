package execution

import (
	"fmt"

	"bugtrack/internal/domain"
	"bugtrack/internal/errors"
	"bugtrack/internal/issue"
)

// Scheduler distributes outcomes across workers. Each bucket holds indexes
// into outcomes, in input order.
type Scheduler interface {
	Schedule(outcomes []domain.TestOutcome, workerCount int) [][]int
}

// Scheduler names accepted by NewScheduler.
const (
	SchedulerLineage    = "lineage"
	SchedulerRoundRobin = "round-robin"
)

// NewScheduler returns the scheduler called name. Round-robin spreads the
// outcomes of one issue over several workers, which may open duplicates on
// trackers without a create lock.
func NewScheduler(name string) (Scheduler, error) {
	switch name {
	case "", SchedulerLineage:
		return NewLineageScheduler(), nil
	case SchedulerRoundRobin:
		return NewRoundRobinScheduler(), nil
	default:
		return nil, fmt.Errorf("%w: scheduler [%s] is unknown, valid values are: %s, %s",
			errors.ErrConfiguration, name, SchedulerLineage, SchedulerRoundRobin)
	}
}

// RoundRobinScheduler distributes outcomes evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes outcomes evenly across workers using round-robin
func (s *RoundRobinScheduler) Schedule(outcomes []domain.TestOutcome, workerCount int) [][]int {
	distribution := newDistribution(workerCount)
	for i := range outcomes {
		workerIndex := i % len(distribution)
		distribution[workerIndex] = append(distribution[workerIndex], i)
	}
	return distribution
}

// LineageScheduler keeps every outcome of one issue lineage on the same
// worker, so that two outcomes with the same summary are never evaluated at
// the same time within a batch. Lineages go to the least loaded worker.
type LineageScheduler struct{}

// NewLineageScheduler creates a new LineageScheduler
func NewLineageScheduler() *LineageScheduler {
	return &LineageScheduler{}
}

// Schedule groups outcomes by summary, then assigns groups to workers
func (s *LineageScheduler) Schedule(outcomes []domain.TestOutcome, workerCount int) [][]int {
	distribution := newDistribution(workerCount)

	worker := make(map[string]int)
	for i, o := range outcomes {
		key := issue.Summary(issue.TestIDOf(o))
		w, ok := worker[key]
		if !ok {
			w = leastLoaded(distribution)
			worker[key] = w
		}
		distribution[w] = append(distribution[w], i)
	}
	return distribution
}

func newDistribution(workerCount int) [][]int {
	if workerCount <= 0 {
		workerCount = 1
	}
	distribution := make([][]int, workerCount)
	for i := range distribution {
		distribution[i] = make([]int, 0)
	}
	return distribution
}

func leastLoaded(distribution [][]int) int {
	best := 0
	for i := range distribution {
		if len(distribution[i]) < len(distribution[best]) {
			best = i
		}
	}
	return best
}
