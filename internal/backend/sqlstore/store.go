// Package sqlstore implements service.Store on a SQL database.
// Supported drivers are "sqlite3" (mattn/go-sqlite3) and "mysql"
// (go-sql-driver/mysql).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"tasklist/internal/service"
)

// Driver names.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// QueryTimeout bounds every statement.
const QueryTimeout = 5 * time.Second

// Store implements service.Store on database/sql.
type Store struct {
	db     *sql.DB
	driver string
	logger *log.Logger
}

// Open connects, pings and migrates. The caller must Close the store.
func Open(ctx context.Context, driver, dsn string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	switch driver {
	case DriverSQLite:
	case DriverMySQL:
		normalized, err := normalizeMySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		dsn = normalized
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One writer; avoids "database is locked" between pooled connections.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	s := &Store{db: db, driver: driver, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// normalizeMySQLDSN forces the connection options the store relies on.
// clientFoundRows makes UPDATE report matched rather than changed rows, so
// an update to an identical title is not mistaken for a missing row.
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	if s.driver == DriverMySQL {
		ddl = `CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    title VARCHAR(1024) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`
	}
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// FetchAll implements service.Store.
func (s *Store) FetchAll(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT id, title FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []service.Task{}
	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, service.Task{ID: strconv.FormatInt(id, 10), Title: title})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return tasks, nil
}

// Insert implements service.Store.
func (s *Store) Insert(ctx context.Context, title string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks (title) VALUES (?)`, title)
	if err != nil {
		return service.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return service.Task{}, fmt.Errorf("insert task: %w", err)
	}
	s.logger.Debug("sql insert", "id", id)
	return service.Task{ID: strconv.FormatInt(id, 10), Title: title}, nil
}

// Update implements service.Store.
func (s *Store) Update(ctx context.Context, id, title string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, title, key)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return s.expectOne(res, "update", id)
}

// Remove implements service.Store.
func (s *Store) Remove(ctx context.Context, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, key)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return s.expectOne(res, "delete", id)
}

func (s *Store) expectOne(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s task: %w", op, err)
	}
	if n == 0 {
		return service.ErrNotFound
	}
	s.logger.Debug("sql "+op, "id", id)
	return nil
}

// parseID converts a task ID back to its integer key. IDs this store did
// not issue cannot exist in it.
func parseID(id string) (int64, error) {
	key, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, service.ErrNotFound
	}
	return key, nil
}
