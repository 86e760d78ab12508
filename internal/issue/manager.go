// Package issue decides what a test outcome means for the bug tracker:
// open an issue, note a new failing step, leave it alone or close it.
package issue

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"bugtrack/internal/clock"
	"bugtrack/internal/config"
	"bugtrack/internal/domain"
	"bugtrack/internal/errors"
	"bugtrack/internal/packager"
	"bugtrack/internal/tracker"
)

// Manager runs the issue lifecycle of test outcomes against a tracker.
// It keeps no state between calls; the tracker is the source of truth.
type Manager struct {
	cfg      *config.Config
	tracker  tracker.Tracker
	packager packager.ArtifactPackager
	clock    clock.Clock
	logger   zerolog.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock sets the time source of issue creation dates.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// NewManager creates a manager working on tr. A nil packager disables archives.
func NewManager(cfg *config.Config, tr tracker.Tracker, p packager.ArtifactPackager, logger zerolog.Logger, opts ...Option) *Manager {
	if p == nil {
		p = packager.Disabled{}
	}
	m := &Manager{
		cfg:      cfg,
		tracker:  tr,
		packager: p,
		clock:    clock.RealClock{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EvaluateFailure builds the issue candidate of a failed test.
//
// It returns ErrNoEvaluableFailure when the steps hold no failure marker or
// when the marker is the first step. The packaging result is returned even
// when packaging failed; the candidate then has no detailed result.
func (m *Manager) EvaluateFailure(ctx context.Context, id TestID, description string, steps []domain.TestStep, options map[string]string) (*domain.Candidate, packager.Result, error) {
	k, ok := FindFailureMarker(steps)
	if !ok {
		return nil, packager.Result{}, errors.Wrapf(errors.ErrNoEvaluableFailure, "test %s", id.TestName)
	}
	marker := steps[k]
	failing := steps[k-1]

	outputRoot := m.cfg.GetOutputDir()
	result := m.packager.Package(ctx, outputRoot, id.TestName)

	candidate := &domain.Candidate{
		Issue: domain.Issue{
			Summary:        Summary(id),
			Description:    StripAccents(BuildDescription(description, steps, k)),
			TestName:       id.TestName,
			FailingStep:    &marker,
			CreatedAt:      m.clock.Now(),
			Attachments:    resolveSnapshots(outputRoot, marker.Snapshots),
			DetailedResult: result.Archive,
		},
		StepIndex:       k,
		FailingStepName: failing.Name,
	}
	ApplyOptions(&candidate.Issue, options)
	return candidate, result, nil
}

// Decide picks the action for a candidate given the open issue with the
// same summary, nil when there is none.
func Decide(candidate *domain.Candidate, existing *domain.Issue) domain.Action {
	summary := candidate.Issue.Summary
	if existing == nil {
		issue := candidate.Issue
		return domain.Action{Kind: domain.ActionCreate, Summary: summary, Issue: &issue}
	}

	marker := StepMarker(candidate.StepIndex)
	if strings.Contains(existing.Description, marker) {
		return domain.NoOp(summary)
	}
	return domain.Action{
		Kind:        domain.ActionUpdate,
		Summary:     summary,
		IssueID:     existing.ID,
		Message:     AnotherStepMessage + StripAccents(candidate.FailingStepName),
		StepMarker:  marker,
		Attachments: candidate.Issue.Attachments,
	}
}

// Reconcile looks up the issue of a candidate and decides what to do with it.
func (m *Manager) Reconcile(ctx context.Context, candidate *domain.Candidate, tr tracker.Tracker) (domain.Action, error) {
	summary := candidate.Issue.Summary
	existing, err := tr.FindExisting(ctx, domain.Issue{Summary: summary})
	if err != nil {
		return domain.NoOp(summary), errors.Mark(errors.Wrapf(err, "find issue %q", summary), errors.ErrTrackerCommunication)
	}

	action := Decide(candidate, existing)
	if action.Kind == domain.ActionNone {
		m.logger.Info().
			Str("summary", summary).
			Str("issue", existing.ID).
			Int("step", candidate.StepIndex).
			Msg("issue already exists")
	}
	return action, nil
}

// EvaluateSuccess decides whether a passing test closes an open issue.
func (m *Manager) EvaluateSuccess(ctx context.Context, id TestID, tr tracker.Tracker) (domain.Action, error) {
	summary := Summary(id)
	existing, err := tr.FindExisting(ctx, domain.Issue{Summary: summary})
	if err != nil {
		return domain.NoOp(summary), errors.Mark(errors.Wrapf(err, "find issue %q", summary), errors.ErrTrackerCommunication)
	}
	if existing == nil {
		return domain.NoOp(summary), nil
	}
	return domain.Action{
		Kind:    domain.ActionClose,
		Summary: summary,
		IssueID: existing.ID,
		Message: ClosingMessage,
	}, nil
}

// Apply performs an action on tr and returns the id of the issue it touched.
func (m *Manager) Apply(ctx context.Context, action domain.Action, tr tracker.Tracker) (string, error) {
	var (
		id  = action.IssueID
		err error
	)
	switch action.Kind {
	case domain.ActionNone:
		return id, nil
	case domain.ActionCreate:
		if action.Issue == nil {
			return "", errors.Wrapf(errors.ErrInvalidTrace, "create action for %q has no issue", action.Summary)
		}
		id, err = tr.Create(ctx, action.Issue)
		err = errors.Wrapf(err, "create issue %q", action.Summary)
	case domain.ActionUpdate:
		err = errors.Wrapf(tr.Update(ctx, id, action.StepMarker+action.Message, action.Attachments), "update issue %s", id)
	case domain.ActionClose:
		err = errors.Wrapf(tr.Close(ctx, id, action.Message), "close issue %s", id)
	default:
		return id, errors.Wrapf(errors.ErrInvalidTrace, "unknown action %q", action.Kind)
	}
	if err != nil {
		return id, errors.Mark(err, errors.ErrTrackerCommunication)
	}
	return id, nil
}

// Process runs the whole lifecycle of one outcome on the manager tracker.
// Errors are logged and recorded in the decision; they never stop a batch.
func (m *Manager) Process(ctx context.Context, outcome domain.TestOutcome) (decision domain.Decision) {
	start := m.clock.Now()
	id := TestIDOf(outcome)
	decision = domain.Decision{
		TestName: outcome.TestName,
		Suite:    outcome.Suite,
		Summary:  Summary(id),
		Passed:   outcome.Passed,
		Kind:     domain.ActionNone,
		Source:   outcome.SourcePath,
	}
	logger := m.logger.With().
		Str("tracker", m.tracker.Type()).
		Str("summary", decision.Summary).
		Logger()
	defer func() { decision.Duration = m.clock.Now().Sub(start) }()

	var (
		action domain.Action
		err    error
	)
	if outcome.Passed {
		action, err = m.EvaluateSuccess(ctx, id, m.tracker)
	} else {
		var (
			candidate *domain.Candidate
			result    packager.Result
		)
		candidate, result, err = m.EvaluateFailure(ctx, id, outcome.Description, outcome.Steps, m.cfg.IssueOptions(outcome.Options))
		if errors.Is(err, errors.ErrNoEvaluableFailure) {
			logger.Debug().Msg("no failure marker after the first step, nothing to track")
			return decision
		}
		if err != nil {
			decision.Error = err.Error()
			logger.Error().Err(err).Msg("failure not evaluated")
			return decision
		}
		defer func() {
			if rmErr := result.Remove(); rmErr != nil {
				logger.Warn().Err(rmErr).Str("archive", result.Archive).Msg("archive not removed")
			}
		}()
		if result.Err != nil {
			logger.Warn().Err(result.Err).Msg("detailed result not archived")
		}
		if result.OK() {
			decision.Archive = filepath.Base(result.Archive)
		}
		decision.StepIndex = candidate.StepIndex
		logger = logger.With().Int("step", candidate.StepIndex).Logger()
		action, err = m.Reconcile(ctx, candidate, m.tracker)
	}
	if err != nil {
		decision.Error = err.Error()
		logger.Error().Err(err).Msg("issue tracking skipped")
		return decision
	}

	decision.Kind = action.Kind
	decision.IssueID = action.IssueID
	decision.Message = action.Message
	if action.Kind == domain.ActionNone {
		return decision
	}
	if m.cfg.Flags.DryRun {
		logger.Info().Str("action", string(action.Kind)).Msg("dry run, tracker left unchanged")
		return decision
	}

	issueID, err := m.Apply(ctx, action, m.tracker)
	decision.IssueID = issueID
	if err != nil {
		decision.Error = err.Error()
		logger.Error().Err(err).Str("action", string(action.Kind)).Msg("issue tracking failed")
		return decision
	}
	logger.Info().Str("action", string(action.Kind)).Str("issue", issueID).Msg("issue tracked")
	return decision
}

// resolveSnapshots makes snapshot files relative to the output root absolute.
func resolveSnapshots(outputRoot string, snapshots []domain.Snapshot) []domain.Snapshot {
	if len(snapshots) == 0 {
		return nil
	}
	out := make([]domain.Snapshot, len(snapshots))
	for i, s := range snapshots {
		s.ImagePath = resolvePath(outputRoot, s.ImagePath)
		s.HTMLSourcePath = resolvePath(outputRoot, s.HTMLSourcePath)
		out[i] = s
	}
	return out
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
