package domain

// MigrationResult is the result of one schema statement run by the migrator.
type MigrationResult struct {
	Statement string
	Success   bool
	Error     error
}
