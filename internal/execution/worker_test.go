package execution

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugtrack/internal/domain"
)

// recordingProcessor marks every outcome as created and records the calls.
type recordingProcessor struct {
	mu    sync.Mutex
	order []string
}

func (p *recordingProcessor) Process(_ context.Context, o domain.TestOutcome) domain.Decision {
	p.mu.Lock()
	p.order = append(p.order, o.TestName)
	p.mu.Unlock()

	if o.TestName == "boom" {
		panic("backend exploded")
	}
	return domain.Decision{TestName: o.TestName, Kind: domain.ActionCreate}
}

func TestWorkerPool_Execute(t *testing.T) {
	processor := &recordingProcessor{}
	pool := NewWorkerPool(3, NewRunner(processor, zerolog.Nop()), nil)

	outcomes := named("a", "b", "a", "c", "b", "d")
	decisions, duration, err := pool.Execute(context.Background(), outcomes)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, int64(duration), int64(0))
	require.Len(t, decisions, len(outcomes))
	for i, d := range decisions {
		assert.Equal(t, outcomes[i].TestName, d.TestName)
		assert.Equal(t, domain.ActionCreate, d.Kind)
	}
	assert.Len(t, processor.order, len(outcomes))
}

func TestWorkerPool_Execute_Empty(t *testing.T) {
	pool := NewWorkerPool(2, NewRunner(&recordingProcessor{}, zerolog.Nop()), nil)

	decisions, _, err := pool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, decisions)
}

func TestWorkerPool_Execute_Panic(t *testing.T) {
	pool := NewWorkerPool(2, NewRunner(&recordingProcessor{}, zerolog.Nop()), NewRoundRobinScheduler())

	decisions, _, err := pool.Execute(context.Background(), named("boom", "ok"))
	require.NoError(t, err)

	assert.True(t, decisions[0].Failed())
	assert.Contains(t, decisions[0].Error, "backend exploded")
	assert.Equal(t, "[Selenium][App][Env][Suite] test boom KO", decisions[0].Summary)
	assert.False(t, decisions[1].Failed())
}

func TestWorkerPool_Execute_Cancelled(t *testing.T) {
	processor := &recordingProcessor{}
	pool := NewWorkerPool(2, NewRunner(processor, zerolog.Nop()), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decisions, _, err := pool.Execute(ctx, named("a", "b"))
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, decisions, 2)
	for _, d := range decisions {
		assert.True(t, d.Failed())
		assert.NotEmpty(t, d.Summary)
	}
	assert.Empty(t, processor.order)
}
