package tracker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugtrack/internal/config"
	"bugtrack/internal/domain"
)

// fakeJira records the calls made to a minimal Jira REST API.
type fakeJira struct {
	mu          sync.Mutex
	search      string
	created     map[string]any
	comments    []string
	attachments []string
	transition  string
}

func (f *fakeJira) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/2/search", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.search = r.URL.Query().Get("jql")
		f.mu.Unlock()
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bot", user)
		assert.Equal(t, "token", pass)
		_, _ = io.WriteString(w, `{"issues":[
			{"key":"QA-1","fields":{"summary":"[Selenium][App][Env][Suite] test testX KO extra","description":"other"}},
			{"key":"QA-2","fields":{"summary":"[Selenium][App][Env][Suite] test testX KO","description":"Step 3 KO\n\nbody",
			 "assignee":{"name":"alice"},"comment":{"comments":[{"body":"Step 5 KO\n\nScenario fails on another step b"}]}}}
		]}`)
	})
	mux.HandleFunc("POST /rest/api/2/issue", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.created = body.Fields
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"id":"10001","key":"QA-7"}`)
	})
	mux.HandleFunc("POST /rest/api/2/issue/{key}/comment", func(w http.ResponseWriter, r *http.Request) {
		var c jiraComment
		require.NoError(t, json.NewDecoder(r.Body).Decode(&c))
		f.mu.Lock()
		f.comments = append(f.comments, r.PathValue("key")+":"+c.Body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{}`)
	})
	mux.HandleFunc("POST /rest/api/2/issue/{key}/attachments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "no-check", r.Header.Get("X-Atlassian-Token"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		f.mu.Lock()
		f.attachments = append(f.attachments, r.PathValue("key")+":"+header.Filename)
		f.mu.Unlock()
		_, _ = io.WriteString(w, `[]`)
	})
	mux.HandleFunc("GET /rest/api/2/issue/{key}/transitions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"transitions":[{"id":"11","name":"In Progress"},{"id":"31","name":"Done"}]}`)
	})
	mux.HandleFunc("POST /rest/api/2/issue/{key}/transitions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Transition struct {
				ID string `json:"id"`
			} `json:"transition"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.transition = r.PathValue("key") + ":" + body.Transition.ID
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newTestJira(t *testing.T, fake *fakeJira, transition string) *Jira {
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	j, err := NewJira(config.Tracker{
		URL:             srv.URL + "/",
		Project:         "QA",
		User:            "bot",
		Password:        "ignored",
		Token:           "token",
		CloseTransition: transition,
	}, zerolog.Nop())
	require.NoError(t, err)
	return j
}

func TestJira_FindExisting(t *testing.T) {
	fake := &fakeJira{}
	j := newTestJira(t, fake, "")

	found, err := j.FindExisting(context.Background(), domain.Issue{Summary: "[Selenium][App][Env][Suite] test testX KO"})
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, "QA-2", found.ID)
	assert.Equal(t, "alice", found.Assignee)
	assert.Equal(t, "Step 3 KO\n\nbody\n\nStep 5 KO\n\nScenario fails on another step b", found.Description)
	assert.Contains(t, fake.search, `project = "QA"`)
	assert.Contains(t, fake.search, `\\[Selenium\\]`)
}

func TestJira_FindExistingNoMatch(t *testing.T) {
	j := newTestJira(t, &fakeJira{}, "")

	found, err := j.FindExisting(context.Background(), domain.Issue{Summary: "[Selenium][App][Env][Suite] test testY KO"})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestJira_Create(t *testing.T) {
	fake := &fakeJira{}
	j := newTestJira(t, fake, "")

	dir := t.TempDir()
	image := filepath.Join(dir, "screen.png")
	archive := filepath.Join(dir, "result.zip")
	require.NoError(t, os.WriteFile(image, []byte("png"), 0644))
	require.NoError(t, os.WriteFile(archive, []byte("zip"), 0644))

	id, err := j.Create(context.Background(), &domain.Issue{
		Summary:     "s",
		Description: "d",
		Priority:    "Major",
		Assignee:    "alice",
		Components:  []string{"ui", "api"},
		CustomFields: map[string]string{
			"customfield_100": "v",
			"customfield_101": `{"value": "High"}`,
			"customfield_102": `[{"value": "web"}, {"value": "api"}]`,
			"customfield_103": "{not json",
		},
		Attachments: []domain.Snapshot{
			{Title: "ok", ImagePath: image},
			{Title: "missing", ImagePath: filepath.Join(dir, "missing.png")},
			{Title: "no image"},
		},
		DetailedResult: archive,
	})
	require.NoError(t, err)
	assert.Equal(t, "QA-7", id)

	assert.Equal(t, "s", fake.created["summary"])
	assert.Equal(t, map[string]any{"name": "Bug"}, fake.created["issuetype"])
	assert.Equal(t, map[string]any{"name": "Major"}, fake.created["priority"])
	assert.Equal(t, "v", fake.created["customfield_100"])
	assert.Equal(t, map[string]any{"value": "High"}, fake.created["customfield_101"])
	assert.Equal(t, []any{map[string]any{"value": "web"}, map[string]any{"value": "api"}}, fake.created["customfield_102"])
	assert.Equal(t, "{not json", fake.created["customfield_103"])
	assert.Len(t, fake.created["components"], 2)
	assert.Equal(t, []string{"QA-7:screen.png", "QA-7:result.zip"}, fake.attachments)
}

func TestJira_UpdateAndClose(t *testing.T) {
	fake := &fakeJira{}
	j := newTestJira(t, fake, "done")
	ctx := context.Background()

	require.NoError(t, j.Update(ctx, "QA-2", "Step 5 KO\n\nScenario fails on another step b", nil))
	require.NoError(t, j.Close(ctx, "QA-2", "Test is now OK"))

	assert.Equal(t, []string{
		"QA-2:Step 5 KO\n\nScenario fails on another step b",
		"QA-2:Test is now OK",
	}, fake.comments)
	assert.Equal(t, "QA-2:31", fake.transition)
}

func TestJira_CloseWithoutTransition(t *testing.T) {
	j := newTestJira(t, &fakeJira{}, "Resolved")

	err := j.Close(context.Background(), "QA-2", "Test is now OK")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Resolved")
}

func TestJira_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	j, err := NewJira(config.Tracker{URL: srv.URL, Project: "QA"}, zerolog.Nop())
	require.NoError(t, err)

	_, err = j.FindExisting(context.Background(), domain.Issue{Summary: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestEscapeJQL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "plain", want: "plain"},
		{in: `say "hi"`, want: `say \"hi\"`},
		{in: "[Selenium]", want: `\\[Selenium\\]`},
		{in: "a-b", want: `a\\-b`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeJQL(tt.in))
		})
	}
	assert.Equal(t, `a\"b`, quoteJQL(`a"b`))
	assert.False(t, strings.Contains(quoteJQL("QA"), `\`))
}
