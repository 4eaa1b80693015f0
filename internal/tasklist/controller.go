// Package tasklist keeps an ordered in-memory list of tasks in step with a
// durable store.
//
// Every mutation is applied to memory, committed to the store, and rolled
// back in memory if the commit fails, so that after any call returns the
// list holds exactly the tasks the store holds. Row indices are only used
// to find a task; all mutations address tasks by store-assigned ID.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"tasklist/internal/service"
)

// Controller mediates between a View and a service.Store.
// It is safe for concurrent use; calls are executed one at a time.
type Controller struct {
	mu     sync.Mutex
	store  service.Store
	view   View
	logger *log.Logger
	tasks  []service.Task
}

// Option configures a Controller.
type Option func(*Controller)

// WithView sets the view that receives row notifications.
func WithView(v View) Option {
	return func(c *Controller) {
		if v != nil {
			c.view = v
		}
	}
}

// WithLogger sets the logger used to report store failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Controller over store. The list is empty until Load.
func New(store service.Store, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		view:   nopView{},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the list with everything the store returns.
// On failure the previous list is left untouched.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks, err := c.store.FetchAll(ctx)
	if err != nil {
		c.logger.Warn("load failed", "err", err)
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	c.tasks = make([]service.Task, len(tasks))
	copy(c.tasks, tasks)
	c.logger.Debug("loaded", "count", len(c.tasks))
	c.view.Reloaded()
	return nil
}

// Create appends a task with the given title.
// A blank title is ignored: the zero Task and a nil error are returned.
func (c *Controller) Create(ctx context.Context, title string) (service.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return service.Task{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The task is tentatively in the list while the insert is in flight.
	index := len(c.tasks)
	c.tasks = append(c.tasks, service.Task{Title: title})

	task, err := c.store.Insert(ctx, title)
	if err != nil {
		c.tasks = c.tasks[:index]
		c.logger.Warn("create rolled back", "title", title, "err", err)
		return service.Task{}, fmt.Errorf("create %q: %w: %w", title, ErrPersistence, err)
	}

	c.tasks[index] = task
	c.logger.Debug("created", "id", task.ID, "index", index)
	c.view.RowInserted(index)
	return task, nil
}

// Rename sets the title of the task with the given ID.
// A blank title is ignored. Renaming to the current title is a no-op.
func (c *Controller) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	index := c.indexOf(id)
	if index < 0 {
		return fmt.Errorf("rename %s: %w", id, ErrNotFound)
	}

	previous := c.tasks[index].Title
	if previous == title {
		return nil
	}
	c.tasks[index].Title = title

	if err := c.store.Update(ctx, id, title); err != nil {
		if isStoreNotFound(err) {
			// Gone from the store; drop it here too.
			c.removeAt(index)
			c.logger.Warn("rename target vanished from store", "id", id)
			c.view.RowRemoved(index)
			return fmt.Errorf("rename %s: %w", id, ErrNotFound)
		}
		c.tasks[index].Title = previous
		c.logger.Warn("rename rolled back", "id", id, "err", err)
		return fmt.Errorf("rename %s: %w: %w", id, ErrPersistence, err)
	}

	c.logger.Debug("renamed", "id", id, "index", index)
	c.view.RowUpdated(index)
	return nil
}

// Delete removes the task with the given ID.
// The row is removed from the view before the commit and re-inserted at
// the same position if the commit fails.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := c.indexOf(id)
	if index < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}

	task := c.removeAt(index)
	c.view.RowRemoved(index)

	if err := c.store.Remove(ctx, id); err != nil {
		if isStoreNotFound(err) {
			c.logger.Debug("delete target already gone from store", "id", id)
			return nil
		}
		c.insertAt(index, task)
		c.view.RowInserted(index)
		c.logger.Warn("delete rolled back", "id", id, "err", err)
		return fmt.Errorf("delete %s: %w: %w", id, ErrPersistence, err)
	}

	c.logger.Debug("deleted", "id", id, "index", index)
	return nil
}

// TaskAt resolves a row index to the task currently shown there.
// Resolve at the moment of the user action and then work with the ID.
func (c *Controller) TaskAt(index int) (service.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.tasks) {
		return service.Task{}, fmt.Errorf("row %d: %w", index, ErrNotFound)
	}
	return c.tasks[index], nil
}

// Count returns the number of rows.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

// Title returns the title shown in row index, or "" if out of range.
func (c *Controller) Title(index int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.tasks) {
		return ""
	}
	return c.tasks[index].Title
}

// Tasks returns a copy of the list.
func (c *Controller) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]service.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

func (c *Controller) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) removeAt(index int) service.Task {
	task := c.tasks[index]
	c.tasks = append(c.tasks[:index], c.tasks[index+1:]...)
	return task
}

func (c *Controller) insertAt(index int, task service.Task) {
	c.tasks = append(c.tasks, service.Task{})
	copy(c.tasks[index+1:], c.tasks[index:])
	c.tasks[index] = task
}

func isStoreNotFound(err error) bool {
	return errors.Is(err, service.ErrNotFound)
}
