// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"
	"sync"

	"tasklist/internal/service"
)

// FakeStore is an in-memory implementation of service.Store for testing.
// IDs are assigned from a counter starting at 1 and are never reused.
type FakeStore struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int

	// Error injection for testing
	FetchAllErr error
	InsertErr   error
	UpdateErr   error
	RemoveErr   error

	// Calls counts store calls by method name.
	Calls map[string]int
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		nextID: 1,
		Calls:  make(map[string]int),
	}
}

// AddTask seeds a task with an explicit ID, bypassing error injection.
func (f *FakeStore) AddTask(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title})
	if n, err := strconv.Atoi(id); err == nil && n >= f.nextID {
		f.nextID = n + 1
	}
}

// Snapshot returns the persisted tasks without counting a call.
func (f *FakeStore) Snapshot() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	return result
}

// TotalCalls returns the number of store calls of any kind.
func (f *FakeStore) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

func (f *FakeStore) count(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[method]++
}

// FetchAll implements service.Store.
func (f *FakeStore) FetchAll(ctx context.Context) ([]service.Task, error) {
	f.count("FetchAll")
	if f.FetchAllErr != nil {
		return nil, f.FetchAllErr
	}
	return f.Snapshot(), nil
}

// Insert implements service.Store.
func (f *FakeStore) Insert(ctx context.Context, title string) (service.Task, error) {
	f.count("Insert")
	if f.InsertErr != nil {
		return service.Task{}, f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	task := service.Task{ID: strconv.Itoa(f.nextID), Title: title}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task, nil
}

// Update implements service.Store.
func (f *FakeStore) Update(ctx context.Context, id, title string) error {
	f.count("Update")
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Title = title
			return nil
		}
	}
	return service.ErrNotFound
}

// Remove implements service.Store.
func (f *FakeStore) Remove(ctx context.Context, id string) error {
	f.count("Remove")
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}
