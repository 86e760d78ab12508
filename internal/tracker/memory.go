package tracker

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"bugtrack/internal/domain"
	"bugtrack/internal/errors"
)

// Memory keeps issues in process. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	issues []domain.Issue
	// onChange runs with mu held after every mutation.
	onChange func([]domain.Issue) error
	// keepArchive returns where the detailed result of a new issue is kept.
	// The archive handed to Create is removed once the outcome is processed.
	keepArchive func(id, archive string) (string, error)
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Type() string { return TypeMemory }

// FindExisting returns the most recent open issue with the probe summary.
func (m *Memory) FindExisting(_ context.Context, probe domain.Issue) (*domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.issues) - 1; i >= 0; i-- {
		if !m.issues[i].Closed && m.issues[i].Summary == probe.Summary {
			found := cloneIssue(m.issues[i])
			return &found, nil
		}
	}
	return nil, nil
}

// Create stores a copy of issue under a new UUID.
func (m *Memory) Create(_ context.Context, issue *domain.Issue) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneIssue(*issue)
	stored.ID = uuid.NewString()
	stored.Closed = false
	kept, err := m.keep(stored.ID, stored.DetailedResult)
	if err != nil {
		return "", err
	}
	stored.DetailedResult = kept
	m.issues = append(m.issues, stored)
	if err := m.changed(); err != nil {
		m.issues = m.issues[:len(m.issues)-1]
		return "", err
	}
	return stored.ID, nil
}

func (m *Memory) Update(_ context.Context, id, message string, attachments []domain.Snapshot) error {
	return m.mutate(id, func(issue *domain.Issue) {
		issue.Description = appendNote(issue.Description, message)
		issue.Attachments = append(issue.Attachments, attachments...)
	})
}

func (m *Memory) Close(_ context.Context, id, message string) error {
	return m.mutate(id, func(issue *domain.Issue) {
		issue.Description = appendNote(issue.Description, message)
		issue.Closed = true
	})
}

// Issues returns a copy of every stored issue, in creation order.
func (m *Memory) Issues() []domain.Issue {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Issue, len(m.issues))
	for i, issue := range m.issues {
		out[i] = cloneIssue(issue)
	}
	return out
}

func (m *Memory) mutate(id string, fn func(*domain.Issue)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.issues {
		if m.issues[i].ID == id {
			previous := cloneIssue(m.issues[i])
			fn(&m.issues[i])
			if err := m.changed(); err != nil {
				m.issues[i] = previous
				return err
			}
			return nil
		}
	}
	return errors.Wrapf(errors.ErrIssueNotFound, "issue %s", id)
}

func (m *Memory) keep(id, archive string) (string, error) {
	if archive == "" || m.keepArchive == nil {
		return "", nil
	}
	return m.keepArchive(id, archive)
}

func (m *Memory) changed() error {
	if m.onChange == nil {
		return nil
	}
	return m.onChange(m.issues)
}

func cloneIssue(issue domain.Issue) domain.Issue {
	out := issue
	out.Components = append([]string(nil), issue.Components...)
	out.Attachments = append([]domain.Snapshot(nil), issue.Attachments...)
	if issue.CustomFields != nil {
		out.CustomFields = make(map[string]string, len(issue.CustomFields))
		for k, v := range issue.CustomFields {
			out.CustomFields[k] = v
		}
	}
	if issue.FailingStep != nil {
		step := *issue.FailingStep
		out.FailingStep = &step
	}
	return out
}

var _ Tracker = (*Memory)(nil)
