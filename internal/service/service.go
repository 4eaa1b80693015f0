// Package service defines the backend-agnostic contract for task persistence.
package service

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when the referenced task does not exist.
// Backends map their own "no such record" condition to it.
var ErrNotFound = errors.New("not found")

// Credential errors. Backends that need a login return these so front ends
// can tell the user to run the login command.
var (
	ErrNotLoggedIn  = errors.New("not logged in (run: tasklist login)")
	ErrUnauthorized = errors.New("token expired or revoked (run: tasklist login)")
)

// IsAuthError reports whether err is a credential error.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotLoggedIn) || errors.Is(err, ErrUnauthorized)
}

// Store is the durable record keeper for tasks.
// Every method is a commit: when it returns nil the change survives a restart.
// Commands and the controller never import a backend SDK directly.
type Store interface {
	// FetchAll returns every persisted task in backend order.
	FetchAll(ctx context.Context) ([]Task, error)

	// Insert creates a task and returns it with its store-assigned ID.
	Insert(ctx context.Context, title string) (Task, error)

	// Update replaces the title of the task with the given ID.
	Update(ctx context.Context, id, title string) error

	// Remove deletes the task with the given ID.
	Remove(ctx context.Context, id string) error
}

// Watcher is implemented by stores that can notice changes made outside
// this process. Each value received on the channel means "reload".
// The channel is closed when ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}
