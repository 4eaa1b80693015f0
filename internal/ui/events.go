package ui

import (
	"sync"

	"tasklist/internal/tasklist"
)

// rowEvents collects controller notifications from command goroutines
// until Update drains them.
type rowEvents struct {
	mu  sync.Mutex
	rec tasklist.Recorder
}

func (r *rowEvents) RowInserted(index int) { r.locked(func() { r.rec.RowInserted(index) }) }
func (r *rowEvents) RowRemoved(index int)  { r.locked(func() { r.rec.RowRemoved(index) }) }
func (r *rowEvents) RowUpdated(index int)  { r.locked(func() { r.rec.RowUpdated(index) }) }
func (r *rowEvents) Reloaded()             { r.locked(r.rec.Reloaded) }

func (r *rowEvents) locked(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// drain returns and forgets the pending events.
func (r *rowEvents) drain() []tasklist.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.rec.Events
	r.rec.Reset()
	return events
}

// moveCursor applies events to a cursor over a list that now has count rows.
// An inserted row is selected; removals above the cursor shift it up.
func moveCursor(cursor, count int, events []tasklist.Event) int {
	for _, e := range events {
		switch e.Kind {
		case tasklist.EventInserted:
			cursor = e.Index
		case tasklist.EventRemoved:
			if cursor > e.Index {
				cursor--
			}
		}
	}
	if cursor >= count {
		cursor = count - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
