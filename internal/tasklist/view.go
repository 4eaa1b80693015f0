package tasklist

// View receives row-level change notifications from the Controller.
// Indices are positions in the list at the moment of the call and are
// only valid until the next notification.
//
// Notifications are delivered while the Controller holds its lock, so a
// View must not call back into the Controller from these methods.
type View interface {
	// RowInserted reports a new row at index.
	RowInserted(index int)

	// RowRemoved reports that the row at index is gone.
	RowRemoved(index int)

	// RowUpdated reports that the title of the row at index changed.
	RowUpdated(index int)

	// Reloaded reports that the whole list was replaced.
	Reloaded()
}

// nopView discards notifications.
type nopView struct{}

func (nopView) RowInserted(int) {}
func (nopView) RowRemoved(int)  {}
func (nopView) RowUpdated(int)  {}
func (nopView) Reloaded()       {}

// Recorder is a View that remembers every notification in order.
// It is not safe for concurrent use.
type Recorder struct {
	Events []Event
}

// Event is a single recorded notification.
type Event struct {
	Kind  EventKind
	Index int
}

// EventKind names a View notification.
type EventKind string

const (
	EventInserted EventKind = "inserted"
	EventRemoved  EventKind = "removed"
	EventUpdated  EventKind = "updated"
	EventReloaded EventKind = "reloaded"
)

func (r *Recorder) RowInserted(index int) { r.add(EventInserted, index) }
func (r *Recorder) RowRemoved(index int)  { r.add(EventRemoved, index) }
func (r *Recorder) RowUpdated(index int)  { r.add(EventUpdated, index) }
func (r *Recorder) Reloaded()             { r.add(EventReloaded, -1) }

func (r *Recorder) add(kind EventKind, index int) {
	r.Events = append(r.Events, Event{Kind: kind, Index: index})
}

// Reset forgets all recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}
