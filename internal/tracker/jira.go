package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"bugtrack/internal/config"
	"bugtrack/internal/domain"
)

const (
	jiraAPI          = "/rest/api/2"
	defaultIssueType = "Bug"
	maxErrorBody     = 512
)

// Jira talks to the Jira REST API v2 with basic authentication.
type Jira struct {
	baseURL         string
	project         string
	user            string
	secret          string
	closeTransition string
	client          *http.Client
	logger          zerolog.Logger
}

// NewJira creates a Jira backend. URL and project are required; the token,
// when set, is used instead of the password.
func NewJira(t config.Tracker, logger zerolog.Logger) (*Jira, error) {
	if t.URL == "" || t.Project == "" {
		return nil, fmt.Errorf("jira tracker needs url and project")
	}
	secret := t.Password
	if t.Token != "" {
		secret = t.Token
	}
	transition := t.CloseTransition
	if transition == "" {
		transition = config.DefaultCloseTransition
	}
	return &Jira{
		baseURL:         strings.TrimSuffix(t.URL, "/"),
		project:         t.Project,
		user:            t.User,
		secret:          secret,
		closeTransition: transition,
		client:          &http.Client{Timeout: t.Timeout},
		logger:          logger,
	}, nil
}

func (j *Jira) Type() string { return TypeJira }

type jiraComment struct {
	Body string `json:"body"`
}

type jiraIssue struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
		Created     string `json:"created"`
		Assignee    *struct {
			Name string `json:"name"`
		} `json:"assignee"`
		Comment struct {
			Comments []jiraComment `json:"comments"`
		} `json:"comment"`
	} `json:"fields"`
}

type jiraSearchResult struct {
	Issues []jiraIssue `json:"issues"`
}

// FindExisting searches unresolved issues of the project with the exact summary.
// The description of the result carries the comments, so that the step
// markers appended by Update are visible.
func (j *Jira) FindExisting(ctx context.Context, probe domain.Issue) (*domain.Issue, error) {
	jql := fmt.Sprintf(`project = "%s" AND summary ~ "%s" AND status not in (Closed, Done) ORDER BY created DESC`,
		quoteJQL(j.project), escapeJQL(probe.Summary))
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("fields", "summary,description,comment,created,assignee")
	q.Set("maxResults", "50")

	var result jiraSearchResult
	if err := j.do(ctx, http.MethodGet, jiraAPI+"/search?"+q.Encode(), nil, &result); err != nil {
		return nil, err
	}

	for _, ji := range result.Issues {
		// "~" is a text search, keep exact matches only
		if ji.Fields.Summary != probe.Summary {
			continue
		}
		description := ji.Fields.Description
		for _, c := range ji.Fields.Comment.Comments {
			description = appendNote(description, c.Body)
		}
		issue := &domain.Issue{
			ID:          ji.Key,
			Summary:     ji.Fields.Summary,
			Description: description,
		}
		if ji.Fields.Assignee != nil {
			issue.Assignee = ji.Fields.Assignee.Name
		}
		return issue, nil
	}
	return nil, nil
}

// Create creates the issue, then uploads its screenshots and result archive.
func (j *Jira) Create(ctx context.Context, issue *domain.Issue) (string, error) {
	issueType := issue.IssueType
	if issueType == "" {
		issueType = defaultIssueType
	}
	fields := map[string]any{
		"project":     map[string]string{"key": j.project},
		"summary":     issue.Summary,
		"description": issue.Description,
		"issuetype":   map[string]string{"name": issueType},
	}
	if issue.Priority != "" {
		fields["priority"] = map[string]string{"name": issue.Priority}
	}
	if issue.Assignee != "" {
		fields["assignee"] = map[string]string{"name": issue.Assignee}
	}
	if issue.Reporter != "" {
		fields["reporter"] = map[string]string{"name": issue.Reporter}
	}
	if len(issue.Components) > 0 {
		components := make([]map[string]string, 0, len(issue.Components))
		for _, c := range issue.Components {
			components = append(components, map[string]string{"name": c})
		}
		fields["components"] = components
	}
	for name, value := range issue.CustomFields {
		fields[name] = jiraFieldValue(value)
	}

	var created struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := j.do(ctx, http.MethodPost, jiraAPI+"/issue", map[string]any{"fields": fields}, &created); err != nil {
		return "", err
	}

	files := snapshotFiles(issue.Attachments)
	if issue.DetailedResult != "" {
		files = append(files, issue.DetailedResult)
	}
	if err := j.attach(ctx, created.Key, files); err != nil {
		return created.Key, err
	}
	return created.Key, nil
}

// jiraFieldValue sends a JSON object or array as is, so that select fields
// can be set with {"value": "..."}. Anything else is a string.
func jiraFieldValue(value string) any {
	trimmed := strings.TrimSpace(value)
	if (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	return value
}

// Update comments the issue and uploads the new screenshots.
func (j *Jira) Update(ctx context.Context, id, message string, attachments []domain.Snapshot) error {
	if err := j.comment(ctx, id, message); err != nil {
		return err
	}
	return j.attach(ctx, id, snapshotFiles(attachments))
}

// Close comments the issue and applies the configured close transition.
func (j *Jira) Close(ctx context.Context, id, message string) error {
	if err := j.comment(ctx, id, message); err != nil {
		return err
	}

	var transitions struct {
		Transitions []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"transitions"`
	}
	path := jiraAPI + "/issue/" + url.PathEscape(id) + "/transitions"
	if err := j.do(ctx, http.MethodGet, path, nil, &transitions); err != nil {
		return err
	}
	for _, t := range transitions.Transitions {
		if strings.EqualFold(t.Name, j.closeTransition) {
			body := map[string]any{"transition": map[string]string{"id": t.ID}}
			return j.do(ctx, http.MethodPost, path, body, nil)
		}
	}
	return fmt.Errorf("jira issue %s has no transition named %q", id, j.closeTransition)
}

func (j *Jira) comment(ctx context.Context, id, message string) error {
	path := jiraAPI + "/issue/" + url.PathEscape(id) + "/comment"
	return j.do(ctx, http.MethodPost, path, jiraComment{Body: message}, nil)
}

// attach uploads files one request each; missing files are skipped.
func (j *Jira) attach(ctx context.Context, id string, files []string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			j.logger.Warn().Err(err).Str("issue", id).Str("file", file).Msg("attachment skipped")
			continue
		}
		if err := j.upload(ctx, id, file); err != nil {
			return err
		}
	}
	return nil
}

func (j *Jira) upload(ctx context.Context, id, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(file))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := j.newRequest(ctx, http.MethodPost, jiraAPI+"/issue/"+url.PathEscape(id)+"/attachments", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "no-check")
	return j.send(req, nil)
}

func (j *Jira) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal jira request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := j.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return j.send(req, out)
}

func (j *Jira) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, j.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build jira request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if j.user != "" {
		req.SetBasicAuth(j.user, j.secret)
	}
	return req, nil
}

func (j *Jira) send(req *http.Request, out any) error {
	resp, err := j.client.Do(req)
	if err != nil {
		return fmt.Errorf("jira %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("jira %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode jira response: %w", err)
	}
	return nil
}

// quoteJQL escapes a value placed inside a double quoted JQL string.
func quoteJQL(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// escapeJQL escapes a text search value placed inside a double quoted JQL
// string. Characters reserved by the text search are escaped too.
func escapeJQL(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '[', ']', '+', '-', '&', '|', '!', '(', ')', '{', '}', '^', '~', '*', '?', ':':
			b.WriteString(`\\`)
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// snapshotFiles lists the image files of snapshots.
func snapshotFiles(snapshots []domain.Snapshot) []string {
	var files []string
	for _, s := range snapshots {
		if s.ImagePath != "" {
			files = append(files, s.ImagePath)
		}
	}
	return files
}

var _ Tracker = (*Jira)(nil)
