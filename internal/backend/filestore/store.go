// Package filestore implements service.Store on a single JSON document.
//
// The document is rewritten atomically on every commit and validated against
// an embedded JSON Schema on every read.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"tasklist/internal/service"
)

// SchemaVersion is the document format version.
const SchemaVersion = 1

// Document is the on-disk layout.
type Document struct {
	SchemaVersion int      `json:"schema_version"`
	Tasks         []Record `json:"tasks"`
}

// Record is one persisted task.
type Record struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Store implements service.Store backed by a JSON file.
type Store struct {
	path   string
	logger *log.Logger
	now    func() time.Time
	newID  func() string

	mu sync.Mutex
	// seen is the file content this store last read, wrote or reported.
	// An empty slice stands for a missing file; nil means never looked.
	seen []byte
	// external is set when a read finds content this store did not write.
	external bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store for path. The file need not exist yet; its directory
// is created on first write.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: log.New(io.Discard),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// FetchAll implements service.Store.
func (s *Store) FetchAll(ctx context.Context) ([]service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	tasks := make([]service.Task, len(doc.Tasks))
	for i, r := range doc.Tasks {
		tasks[i] = service.Task{ID: r.ID, Title: r.Title}
	}
	return tasks, nil
}

// Insert implements service.Store.
func (s *Store) Insert(ctx context.Context, title string) (service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return service.Task{}, err
	}

	now := s.now().UTC()
	rec := Record{ID: s.newID(), Title: title, CreatedAt: &now, UpdatedAt: &now}
	doc.Tasks = append(doc.Tasks, rec)

	if err := s.write(doc); err != nil {
		return service.Task{}, err
	}
	s.logger.Debug("file insert", "id", rec.ID)
	return service.Task{ID: rec.ID, Title: rec.Title}, nil
}

// Update implements service.Store.
func (s *Store) Update(ctx context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	i := doc.index(id)
	if i < 0 {
		return service.ErrNotFound
	}
	now := s.now().UTC()
	doc.Tasks[i].Title = title
	doc.Tasks[i].UpdatedAt = &now

	if err := s.write(doc); err != nil {
		return err
	}
	s.logger.Debug("file update", "id", id)
	return nil
}

// Remove implements service.Store.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	i := doc.index(id)
	if i < 0 {
		return service.ErrNotFound
	}
	doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)

	if err := s.write(doc); err != nil {
		return err
	}
	s.logger.Debug("file remove", "id", id)
	return nil
}

func (d *Document) index(id string) int {
	for i, r := range d.Tasks {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// read loads and validates the document. A missing or empty file is an
// empty document.
func (s *Store) read() (*Document, error) {
	data, err := s.readFile()
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	if s.seen != nil && !bytes.Equal(data, s.seen) {
		s.external = true
	}
	s.seen = data
	if len(data) == 0 {
		return &Document{SchemaVersion: SchemaVersion, Tasks: []Record{}}, nil
	}
	return decode(data)
}

// readFile returns the raw document, or an empty slice if the file is missing.
func (s *Store) readFile() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func decode(data []byte) (*Document, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("invalid task file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []Record{}
	}
	ids := make(map[string]int, len(doc.Tasks))
	for i, r := range doc.Tasks {
		if first, ok := ids[r.ID]; ok {
			return nil, fmt.Errorf("invalid task file: %w", &ValidationError{
				Path: fmt.Sprintf("tasks[%d].id", i),
				Err:  fmt.Errorf("duplicate id %q (also tasks[%d].id)", r.ID, first),
			})
		}
		ids[r.ID] = i
	}
	return &doc, nil
}

// write replaces the document atomically: temp file in the same directory,
// fsync, rename.
func (s *Store) write(doc *Document) error {
	doc.SchemaVersion = SchemaVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create task file dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write task file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("write task file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}

	s.seen = data
	return nil
}

// changedExternally reports whether another process changed the document
// since this store last looked at it, and marks the current content seen.
func (s *Store) changedExternally() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.readFile()
	if err != nil {
		return true
	}
	changed := s.external || (s.seen != nil && !bytes.Equal(data, s.seen))
	s.external = false
	s.seen = data
	return changed
}

// markSeen records the current content as the baseline if nothing has
// been read yet.
func (s *Store) markSeen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen != nil {
		return nil
	}
	data, err := s.readFile()
	if err != nil {
		return err
	}
	s.seen = data
	return nil
}
