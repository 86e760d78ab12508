package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"bugtrack/internal/config"
	"bugtrack/internal/domain"
	"bugtrack/internal/errors"
)

// MySQL table names.
const (
	IssuesTable      = "bugtrack_issues"
	AttachmentsTable = "bugtrack_attachments"
)

// MySQLSchema creates the tables of the mysql tracker. Statements are idempotent.
var MySQLSchema = []string{ //nolint:gochecknoglobals // schema definition
	"CREATE TABLE IF NOT EXISTS `" + IssuesTable + "` (" +
		"`id` BIGINT UNSIGNED NOT NULL AUTO_INCREMENT," +
		"`summary` VARCHAR(512) NOT NULL," +
		"`description` MEDIUMTEXT NOT NULL," +
		"`test_name` VARCHAR(255) NOT NULL DEFAULT ''," +
		"`assignee` VARCHAR(255) NOT NULL DEFAULT ''," +
		"`reporter` VARCHAR(255) NOT NULL DEFAULT ''," +
		"`priority` VARCHAR(64) NOT NULL DEFAULT ''," +
		"`issue_type` VARCHAR(64) NOT NULL DEFAULT ''," +
		"`components` TEXT NOT NULL," +
		"`custom_fields` TEXT NOT NULL," +
		"`created_at` DATETIME NOT NULL," +
		"`closed` TINYINT(1) NOT NULL DEFAULT 0," +
		"`closed_at` DATETIME NULL," +
		"PRIMARY KEY (`id`)," +
		"KEY `idx_summary_closed` (`summary`(191), `closed`)" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
	"CREATE TABLE IF NOT EXISTS `" + AttachmentsTable + "` (" +
		"`id` BIGINT UNSIGNED NOT NULL AUTO_INCREMENT," +
		"`issue_id` BIGINT UNSIGNED NOT NULL," +
		"`title` VARCHAR(255) NOT NULL DEFAULT ''," +
		"`image_path` VARCHAR(1024) NOT NULL DEFAULT ''," +
		"`html_source_path` VARCHAR(1024) NOT NULL DEFAULT ''," +
		"`location` VARCHAR(2048) NOT NULL DEFAULT ''," +
		"PRIMARY KEY (`id`)," +
		"KEY `idx_issue` (`issue_id`)" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
}

// MySQLConfig returns the driver configuration for the mysql tracker.
// When withDatabase is false the connection targets the server only.
func MySQLConfig(t config.Tracker, withDatabase bool) *mysql.Config {
	c := mysql.NewConfig()
	c.User = t.User
	c.Passwd = t.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(t.Host, t.Port)
	if withDatabase {
		c.DBName = t.Database
	}
	c.ParseTime = true
	if t.Timeout > 0 {
		c.Timeout = t.Timeout
		c.ReadTimeout = t.Timeout
		c.WriteTimeout = t.Timeout
	}
	return c
}

// MySQL stores issues in a MySQL database created by "bugtrack migrate".
type MySQL struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenMySQL connects to the configured database.
func OpenMySQL(t config.Tracker, logger zerolog.Logger) (*MySQL, error) {
	connector, err := mysql.NewConnector(MySQLConfig(t, true))
	if err != nil {
		return nil, fmt.Errorf("failed to configure database connection: %w", err)
	}
	db := sql.OpenDB(connector)
	return NewMySQL(db, logger), nil
}

// NewMySQL uses an open database handle.
func NewMySQL(db *sql.DB, logger zerolog.Logger) *MySQL {
	return &MySQL{db: db, logger: logger}
}

func (m *MySQL) Type() string { return TypeMySQL }

// Release closes the database handle.
func (m *MySQL) Release() error {
	return m.db.Close()
}

func (m *MySQL) FindExisting(ctx context.Context, probe domain.Issue) (*domain.Issue, error) {
	query := "SELECT `id`, `summary`, `description`, `test_name`, `assignee`, `reporter`, `priority`, " +
		"`issue_type`, `components`, `custom_fields`, `created_at` FROM `" + IssuesTable +
		"` WHERE `summary` = ? AND `closed` = 0 ORDER BY `id` DESC LIMIT 1"

	var (
		id                   int64
		issue                domain.Issue
		components, fieldsJS string
	)
	err := m.db.QueryRowContext(ctx, query, probe.Summary).Scan(
		&id, &issue.Summary, &issue.Description, &issue.TestName, &issue.Assignee, &issue.Reporter,
		&issue.Priority, &issue.IssueType, &components, &fieldsJS, &issue.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query issue: %w", err)
	}

	issue.ID = strconv.FormatInt(id, 10)
	if components != "" {
		issue.Components = strings.Split(components, ",")
	}
	if fieldsJS != "" {
		if err := json.Unmarshal([]byte(fieldsJS), &issue.CustomFields); err != nil {
			m.logger.Warn().Err(err).Str("issue", issue.ID).Msg("custom fields not decoded")
		}
	}
	return &issue, nil
}

// Create inserts issue with its attachments. The detailed result archive is
// not stored: it does not outlive the sync of the outcome.
func (m *MySQL) Create(ctx context.Context, issue *domain.Issue) (string, error) {
	fields, err := json.Marshal(issue.CustomFields)
	if err != nil {
		return "", fmt.Errorf("marshal custom fields: %w", err)
	}
	createdAt := issue.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		"INSERT INTO `"+IssuesTable+"` (`summary`, `description`, `test_name`, `assignee`, `reporter`, "+
			"`priority`, `issue_type`, `components`, `custom_fields`, `created_at`) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		issue.Summary, issue.Description, issue.TestName, issue.Assignee, issue.Reporter,
		issue.Priority, issue.IssueType, strings.Join(issue.Components, ","), string(fields),
		createdAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert issue: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read issue id: %w", err)
	}
	if err := insertAttachments(ctx, tx, id, issue.Attachments); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit issue: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (m *MySQL) Update(ctx context.Context, id, message string, attachments []domain.Snapshot) error {
	issueID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return errors.Wrapf(errors.ErrIssueNotFound, "issue %q", id)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := appendDescription(ctx, tx, issueID, message, false); err != nil {
		return err
	}
	if err := insertAttachments(ctx, tx, issueID, attachments); err != nil {
		return err
	}
	return tx.Commit()
}

func (m *MySQL) Close(ctx context.Context, id, message string) error {
	issueID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return errors.Wrapf(errors.ErrIssueNotFound, "issue %q", id)
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := appendDescription(ctx, tx, issueID, message, true); err != nil {
		return err
	}
	return tx.Commit()
}

func appendDescription(ctx context.Context, tx *sql.Tx, id int64, note string, closing bool) error {
	query := "UPDATE `" + IssuesTable + "` SET `description` = CONCAT(`description`, ?)"
	if closing {
		query += ", `closed` = 1, `closed_at` = UTC_TIMESTAMP()"
	}
	query += " WHERE `id` = ?"

	res, err := tx.ExecContext(ctx, query, "\n\n"+note, id)
	if err != nil {
		return fmt.Errorf("update issue %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update issue %d: %w", id, err)
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrIssueNotFound, "issue %d", id)
	}
	return nil
}

func insertAttachments(ctx context.Context, tx *sql.Tx, id int64, attachments []domain.Snapshot) error {
	for _, a := range attachments {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO `"+AttachmentsTable+"` (`issue_id`, `title`, `image_path`, `html_source_path`, `location`) VALUES (?, ?, ?, ?, ?)",
			id, a.Title, a.ImagePath, a.HTMLSourcePath, a.Location,
		)
		if err != nil {
			return fmt.Errorf("insert attachment of issue %d: %w", id, err)
		}
	}
	return nil
}

var _ Tracker = (*MySQL)(nil)
