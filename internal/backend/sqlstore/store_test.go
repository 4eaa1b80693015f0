package sqlstore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/service"
)

func openSQLite(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_CRUD(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t, filepath.Join(t.TempDir(), "tasks.db"))

	tasks, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	a, err := s.Insert(ctx, "Buy milk")
	require.NoError(t, err)
	b, err := s.Insert(ctx, "Walk dog")
	require.NoError(t, err)
	assert.Equal(t, "1", a.ID)
	assert.Equal(t, "2", b.ID)

	require.NoError(t, s.Update(ctx, a.ID, "Buy oat milk"))
	// Same title again still matches one row.
	require.NoError(t, s.Update(ctx, a.ID, "Buy oat milk"))
	require.NoError(t, s.Remove(ctx, b.ID))

	tasks, err = s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Task{{ID: "1", Title: "Buy oat milk"}}, tasks)
}

func TestSQLite_IDsNotReused(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t, filepath.Join(t.TempDir(), "tasks.db"))

	a, err := s.Insert(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, a.ID))
	b, err := s.Insert(ctx, "b")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestSQLite_NotFound(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t, filepath.Join(t.TempDir(), "tasks.db"))

	assert.ErrorIs(t, s.Update(ctx, "42", "x"), service.ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, "42"), service.ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, "not-a-number"), service.ErrNotFound)
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.db")

	first, err := Open(ctx, DriverSQLite, path, nil)
	require.NoError(t, err)
	_, err = first.Insert(ctx, "persisted")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openSQLite(t, path)
	tasks, err := second.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Task{{ID: "1", Title: "persisted"}}, tasks)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "postgres", "x", nil)
	assert.EqualError(t, err, "unsupported sql driver: postgres")
}

func TestNormalizeMySQLDSN(t *testing.T) {
	dsn, err := normalizeMySQLDSN("user:pw@tcp(127.0.0.1:3306)/tasks")
	require.NoError(t, err)
	assert.True(t, strings.Contains(dsn, "parseTime=true"), dsn)
	assert.True(t, strings.Contains(dsn, "clientFoundRows=true"), dsn)

	_, err = normalizeMySQLDSN("user:pw@tcp(127.0.0.1:3306)")
	assert.Error(t, err)
}
