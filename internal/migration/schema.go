package migration

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"bugtrack/internal/config"
	"bugtrack/internal/domain"
	"bugtrack/internal/tracker"
)

// SchemaMigrator creates the tables of the mysql tracker
type SchemaMigrator struct {
	config          *config.Config
	databaseManager *DatabaseManager
	out             io.Writer
}

// NewSchemaMigrator creates a new SchemaMigrator
func NewSchemaMigrator(cfg *config.Config, dbManager *DatabaseManager) *SchemaMigrator {
	return &SchemaMigrator{
		config:          cfg,
		databaseManager: dbManager,
		out:             os.Stderr,
	}
}

// Statements returns the statements run by a migration. A fresh migration
// drops the tables first, which loses every recorded issue.
func Statements(fresh bool) []string {
	var stmts []string
	if fresh {
		stmts = append(stmts,
			"DROP TABLE IF EXISTS `"+tracker.AttachmentsTable+"`",
			"DROP TABLE IF EXISTS `"+tracker.IssuesTable+"`",
		)
	}
	return append(stmts, tracker.MySQLSchema...)
}

// Run creates the database if needed, then runs the schema statements
func (sm *SchemaMigrator) Run(ctx context.Context, fresh bool) error {
	color.Cyan("\n╔════════════════════════════════════════════════════════════╗")
	color.Cyan("║               Running Database Migrations                  ║")
	color.Cyan("╚════════════════════════════════════════════════════════════╝\n")

	created, err := sm.databaseManager.EnsureDatabase(ctx)
	if err != nil {
		return fmt.Errorf("failed to check database: %w", err)
	}
	if created {
		color.Green("✓ Database %s created\n", sm.config.Tracker.Database)
	}

	db, err := sm.databaseManager.Open(ctx, true)
	if err != nil {
		return err
	}
	defer db.Close()

	stmts := Statements(fresh)
	color.White("Database: %s | Statements: %d\n\n", sm.config.Tracker.Database, len(stmts))

	bar := progressbar.NewOptions(len(stmts),
		progressbar.OptionSetDescription(color.CyanString("Migrating: ")),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(sm.out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(sm.out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	startTime := time.Now()
	var failed []domain.MigrationResult
	for _, stmt := range stmts {
		result := domain.MigrationResult{Statement: stmt, Success: true}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			result.Success = false
			result.Error = err
			failed = append(failed, result)
		}
		_ = bar.Add(1)
		if ctx.Err() != nil {
			break
		}
	}
	_ = bar.Finish()

	duration := time.Since(startTime)

	// Print summary
	fmt.Print("\n")
	if len(failed) > 0 {
		color.Red("✗ %d statement(s) failed\n", len(failed))
		for _, result := range failed {
			color.Red("  %s: %v\n", firstLine(result.Statement), result.Error)
		}
		return fmt.Errorf("migration failed for %d statement(s)", len(failed))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	color.Green("✓ Schema is up to date\n")
	color.White("Duration: %s\n", duration.Round(time.Millisecond))
	return nil
}

func firstLine(stmt string) string {
	const limit = 60
	if len(stmt) > limit {
		return stmt[:limit] + "..."
	}
	return stmt
}

var _ Migrator = (*SchemaMigrator)(nil)
