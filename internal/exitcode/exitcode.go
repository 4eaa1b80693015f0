// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, row out of range).
	UserError = 1

	// AuthError indicates an auth or configuration error.
	AuthError = 2

	// StoreError indicates the task store could not be read or did not
	// accept a change.
	StoreError = 3
)
