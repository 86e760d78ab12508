package tracker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugtrack/internal/domain"
	"bugtrack/internal/errors"
)

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	probe := domain.Issue{Summary: "[Selenium][App][Env][Suite] test testX KO"}

	found, err := m.FindExisting(ctx, probe)
	require.NoError(t, err)
	assert.Nil(t, found)

	id, err := m.Create(ctx, &domain.Issue{
		Summary:     probe.Summary,
		Description: "Step 3 KO\n\nfirst",
		Components:  []string{"ui"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	found, err = m.FindExisting(ctx, probe)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)

	// callers cannot alter the store through a returned issue
	found.Components[0] = "changed"
	assert.Equal(t, "ui", m.Issues()[0].Components[0])

	snap := domain.Snapshot{Title: "screen", ImagePath: "a.png"}
	require.NoError(t, m.Update(ctx, id, "Step 5 KO\n\nScenario fails on another step login", []domain.Snapshot{snap}))

	found, err = m.FindExisting(ctx, probe)
	require.NoError(t, err)
	assert.Contains(t, found.Description, "Step 3 KO\n\n")
	assert.Contains(t, found.Description, "Step 5 KO\n\n")
	assert.Equal(t, []domain.Snapshot{snap}, found.Attachments)

	require.NoError(t, m.Close(ctx, id, "Test is now OK"))
	found, err = m.FindExisting(ctx, probe)
	require.NoError(t, err)
	assert.Nil(t, found)

	issues := m.Issues()
	require.Len(t, issues, 1)
	assert.True(t, issues[0].Closed)
	assert.Contains(t, issues[0].Description, "Test is now OK")
}

func TestMemory_ReopenAfterClose(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first, err := m.Create(ctx, &domain.Issue{Summary: "s"})
	require.NoError(t, err)
	require.NoError(t, m.Close(ctx, first, "Test is now OK"))

	second, err := m.Create(ctx, &domain.Issue{Summary: "s"})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	found, err := m.FindExisting(ctx, domain.Issue{Summary: "s"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, second, found.ID)
}

func TestMemory_UnknownIssue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	assert.ErrorIs(t, m.Update(ctx, "missing", "m", nil), errors.ErrIssueNotFound)
	assert.ErrorIs(t, m.Close(ctx, "missing", "m"), errors.ErrIssueNotFound)
}

func TestMemory_OnChangeFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	id, err := m.Create(ctx, &domain.Issue{Summary: "s", Description: "d"})
	require.NoError(t, err)

	m.onChange = func([]domain.Issue) error { return errors.New("disk full") }

	_, err = m.Create(ctx, &domain.Issue{Summary: "other"})
	require.Error(t, err)
	require.Error(t, m.Update(ctx, id, "note", nil))

	issues := m.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, "d", issues[0].Description)
}

func TestMemory_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Create(ctx, &domain.Issue{Summary: "s"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, m.Issues(), 20)
}

func TestMemory_DropsDetailedResult(t *testing.T) {
	m := NewMemory()
	_, err := m.Create(context.Background(), &domain.Issue{Summary: "s", DetailedResult: "/tmp/result.zip"})
	require.NoError(t, err)
	assert.Empty(t, m.Issues()[0].DetailedResult)
}
