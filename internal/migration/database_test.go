package migration

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugtrack/internal/config"
	"bugtrack/internal/tracker"
)

func TestIsValidDatabaseName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "default", input: "bugtrack", valid: true},
		{name: "underscore", input: "bug_track_2", valid: true},
		{name: "empty", input: "", valid: false},
		{name: "too long", input: strings.Repeat("a", 65), valid: false},
		{name: "quote", input: "bug'track", valid: false},
		{name: "backtick", input: "bug`track", valid: false},
		{name: "comment", input: "bug--track", valid: false},
		{name: "drop keyword", input: "dropme", valid: false},
		{name: "space", input: "bug track", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, isValidDatabaseName(tt.input))
		})
	}
}

func TestEnsureDatabase_InvalidName(t *testing.T) {
	cfg := config.New()
	cfg.Tracker.Database = "x; DROP DATABASE y"

	_, err := NewDatabaseManager(cfg).EnsureDatabase(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database name")
}

func TestStatements(t *testing.T) {
	assert.Equal(t, tracker.MySQLSchema, Statements(false))

	fresh := Statements(true)
	require.Len(t, fresh, len(tracker.MySQLSchema)+2)
	assert.True(t, strings.HasPrefix(fresh[0], "DROP TABLE IF EXISTS"))
	assert.Contains(t, fresh[0], tracker.AttachmentsTable)
	assert.Contains(t, fresh[1], tracker.IssuesTable)
}
