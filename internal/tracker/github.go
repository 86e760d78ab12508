package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"bugtrack/internal/config"
	"bugtrack/internal/domain"
	"bugtrack/internal/errors"
)

const githubPageSize = 100

// GitHub files issues in a GitHub repository. Issues opened by bugtrack carry
// the configured label, which scopes the lookup.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	label  string
	logger zerolog.Logger
}

// NewGitHub creates a GitHub backend for project "owner/repo". URL, when set,
// is the API base URL (GitHub Enterprise).
func NewGitHub(t config.Tracker, logger zerolog.Logger) (*GitHub, error) {
	owner, repo, ok := strings.Cut(t.Project, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("github project must be owner/repo, got %q", t.Project)
	}
	if t.Token == "" {
		return nil, fmt.Errorf("github token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: t.Token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = t.Timeout

	client := github.NewClient(httpClient)
	if t.URL != "" {
		base, err := url.Parse(strings.TrimSuffix(t.URL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github url: %w", err)
		}
		client.BaseURL = base
	}
	return newGitHub(client, owner, repo, t.Label, logger), nil
}

func newGitHub(client *github.Client, owner, repo, label string, logger zerolog.Logger) *GitHub {
	if label == "" {
		label = config.DefaultGitHubLabel
	}
	return &GitHub{client: client, owner: owner, repo: repo, label: label, logger: logger}
}

func (g *GitHub) Type() string { return TypeGitHub }

// FindExisting looks for an open labelled issue with the exact title.
// The description of the result carries the comments.
func (g *GitHub) FindExisting(ctx context.Context, probe domain.Issue) (*domain.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		Labels:      []string{g.label},
		ListOptions: github.ListOptions{PerPage: githubPageSize},
	}
	for {
		issues, resp, err := g.client.Issues.ListByRepo(ctx, g.owner, g.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list github issues: %w", err)
		}
		for _, gi := range issues {
			if gi.IsPullRequest() || gi.GetTitle() != probe.Summary {
				continue
			}
			return g.withComments(ctx, gi)
		}
		if resp == nil || resp.NextPage == 0 {
			return nil, nil
		}
		opts.Page = resp.NextPage
	}
}

func (g *GitHub) withComments(ctx context.Context, gi *github.Issue) (*domain.Issue, error) {
	issue := &domain.Issue{
		ID:          strconv.Itoa(gi.GetNumber()),
		Summary:     gi.GetTitle(),
		Description: gi.GetBody(),
		CreatedAt:   gi.GetCreatedAt().Time,
	}
	if gi.Assignee != nil {
		issue.Assignee = gi.Assignee.GetLogin()
	}

	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: githubPageSize}}
	for {
		comments, resp, err := g.client.Issues.ListComments(ctx, g.owner, g.repo, gi.GetNumber(), opts)
		if err != nil {
			return nil, fmt.Errorf("list comments of issue #%d: %w", gi.GetNumber(), err)
		}
		for _, c := range comments {
			issue.Description = appendNote(issue.Description, c.GetBody())
		}
		if resp == nil || resp.NextPage == 0 {
			return issue, nil
		}
		opts.Page = resp.NextPage
	}
}

// Create opens an issue. Components become labels; custom fields, priority
// and attachment names are listed in the body since GitHub has no such fields.
func (g *GitHub) Create(ctx context.Context, issue *domain.Issue) (string, error) {
	labels := append([]string{g.label}, issue.Components...)
	body := issue.Description + githubDetails(issue)
	req := &github.IssueRequest{
		Title:  github.String(issue.Summary),
		Body:   github.String(body),
		Labels: &labels,
	}
	if issue.Assignee != "" {
		req.Assignee = github.String(issue.Assignee)
	}

	created, _, err := g.client.Issues.Create(ctx, g.owner, g.repo, req)
	if err != nil {
		return "", fmt.Errorf("create github issue: %w", err)
	}
	return strconv.Itoa(created.GetNumber()), nil
}

func (g *GitHub) Update(ctx context.Context, id, message string, attachments []domain.Snapshot) error {
	number, err := issueNumber(id)
	if err != nil {
		return err
	}
	return g.comment(ctx, number, message+attachmentList(attachments))
}

func (g *GitHub) Close(ctx context.Context, id, message string) error {
	number, err := issueNumber(id)
	if err != nil {
		return err
	}
	if err := g.comment(ctx, number, message); err != nil {
		return err
	}
	_, _, err = g.client.Issues.Edit(ctx, g.owner, g.repo, number, &github.IssueRequest{
		State:       github.String("closed"),
		StateReason: github.String("completed"),
	})
	if err != nil {
		return fmt.Errorf("close github issue #%d: %w", number, err)
	}
	return nil
}

func (g *GitHub) comment(ctx context.Context, number int, body string) error {
	_, resp, err := g.client.Issues.CreateComment(ctx, g.owner, g.repo, number, &github.IssueComment{Body: github.String(body)})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return errors.Wrapf(errors.ErrIssueNotFound, "github issue #%d", number)
		}
		return fmt.Errorf("comment github issue #%d: %w", number, err)
	}
	return nil
}

func issueNumber(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrIssueNotFound, "github issue %q", id)
	}
	return n, nil
}

func githubDetails(issue *domain.Issue) string {
	var b strings.Builder
	if !issue.CreatedAt.IsZero() || issue.Priority != "" || issue.Reporter != "" || len(issue.CustomFields) > 0 {
		b.WriteString("\n\n| Field | Value |\n|---|---|")
		if !issue.CreatedAt.IsZero() {
			fmt.Fprintf(&b, "\n| created | %s |", issue.DateString())
		}
		if issue.Priority != "" {
			fmt.Fprintf(&b, "\n| priority | %s |", issue.Priority)
		}
		if issue.Reporter != "" {
			fmt.Fprintf(&b, "\n| reporter | %s |", issue.Reporter)
		}
		names := make([]string, 0, len(issue.CustomFields))
		for name := range issue.CustomFields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "\n| %s | %s |", name, issue.CustomFields[name])
		}
	}
	b.WriteString(attachmentList(issue.Attachments))
	return b.String()
}

func attachmentList(attachments []domain.Snapshot) string {
	if len(attachments) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nScreenshots:")
	for _, a := range attachments {
		name := a.Title
		if a.ImagePath != "" {
			name += " (" + filepath.Base(a.ImagePath) + ")"
		}
		b.WriteString("\n- ")
		b.WriteString(name)
	}
	return b.String()
}

var _ Tracker = (*GitHub)(nil)
