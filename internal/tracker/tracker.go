// Package tracker talks to issue trackers. Every backend implements Tracker;
// New selects one from configuration.
package tracker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"bugtrack/internal/config"
	"bugtrack/internal/domain"
	"bugtrack/internal/errors"
)

// Tracker is the issue tracker contract used by the lifecycle manager.
type Tracker interface {
	// Type returns the backend name, as configured.
	Type() string
	// FindExisting returns the open issue whose summary equals probe.Summary,
	// or nil when there is none. The returned description includes every
	// note appended by Update.
	FindExisting(ctx context.Context, probe domain.Issue) (*domain.Issue, error)
	// Create submits a new issue and returns its id.
	Create(ctx context.Context, issue *domain.Issue) (string, error)
	// Update appends message and attachments to an existing issue.
	Update(ctx context.Context, id, message string, attachments []domain.Snapshot) error
	// Close closes an issue with a closing message.
	Close(ctx context.Context, id, message string) error
}

// Backend names.
const (
	TypeJira   = "jira"
	TypeGitHub = "github"
	TypeMySQL  = "mysql"
	TypeFile   = "file"
	TypeMemory = "memory"
	TypeFake   = "fake"
)

type factory func(cfg *config.Config, logger zerolog.Logger) (Tracker, error)

var factories = map[string]factory{ //nolint:gochecknoglobals // registry
	TypeJira: func(cfg *config.Config, logger zerolog.Logger) (Tracker, error) {
		return NewJira(cfg.Tracker, logger)
	},
	TypeGitHub: func(cfg *config.Config, logger zerolog.Logger) (Tracker, error) {
		return NewGitHub(cfg.Tracker, logger)
	},
	TypeMySQL: func(cfg *config.Config, logger zerolog.Logger) (Tracker, error) {
		return OpenMySQL(cfg.Tracker, logger)
	},
	TypeFile: func(cfg *config.Config, _ zerolog.Logger) (Tracker, error) {
		return NewFile(cfg.GetIssueFilePath())
	},
	TypeMemory: func(*config.Config, zerolog.Logger) (Tracker, error) {
		return NewMemory(), nil
	},
	TypeFake: func(*config.Config, zerolog.Logger) (Tracker, error) {
		return Fake{}, nil
	},
}

// Types lists the supported backend names.
func Types() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the backend named by cfg.Tracker.Type. An unknown type is a
// configuration error.
func New(cfg *config.Config, logger zerolog.Logger) (Tracker, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Tracker.Type))
	create, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: tracker type [%s] is unknown, valid values are: %v",
			errors.ErrConfiguration, cfg.Tracker.Type, Types())
	}
	t, err := create(cfg, logger.With().Str("tracker", kind).Logger())
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "create %s tracker", kind), errors.ErrConfiguration)
	}
	return t, nil
}

// Fake accepts every call and never finds an issue. It is used where no
// tracker integration is wanted.
type Fake struct{}

func (Fake) Type() string { return TypeFake }

func (Fake) FindExisting(context.Context, domain.Issue) (*domain.Issue, error) { return nil, nil }

func (Fake) Create(context.Context, *domain.Issue) (string, error) { return "", nil }

func (Fake) Update(context.Context, string, string, []domain.Snapshot) error { return nil }

func (Fake) Close(context.Context, string, string) error { return nil }

var _ Tracker = Fake{}

// Release frees the resources held by a backend, such as a database handle.
func Release(t Tracker) error {
	if r, ok := t.(interface{ Release() error }); ok {
		return r.Release()
	}
	return nil
}

// appendNote appends a note to a description with a blank line separator.
func appendNote(description, note string) string {
	if description == "" {
		return note
	}
	return description + "\n\n" + note
}
