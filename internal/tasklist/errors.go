package tasklist

import "errors"

// Error kinds returned by the Controller. Callers match them with errors.Is;
// the underlying store error stays reachable through the same chain.
var (
	// ErrStoreUnavailable means Load could not fetch from the store.
	// The previous in-memory snapshot is kept.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrPersistence means a commit failed after a tentative in-memory
	// change. The change has been rolled back.
	ErrPersistence = errors.New("persistence error")

	// ErrNotFound means the referenced task is not in the list.
	ErrNotFound = errors.New("task not found")
)
