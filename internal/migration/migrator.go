// Package migration prepares the MySQL database used by the mysql tracker.
package migration

import "context"

// Migrator runs database migrations
type Migrator interface {
	Run(ctx context.Context, fresh bool) error
}
