package tasklist_test

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/service"
	"tasklist/internal/tasklist"
	"tasklist/internal/testutil"
)

var errCommit = errors.New("disk full")

func newLoaded(t *testing.T, store *testutil.FakeStore) (*tasklist.Controller, *tasklist.Recorder) {
	t.Helper()
	rec := &tasklist.Recorder{}
	c := tasklist.New(store, tasklist.WithView(rec))
	require.NoError(t, c.Load(context.Background()))
	rec.Reset()
	return c, rec
}

func ids(tasks []service.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func sortedIDs(tasks []service.Task) []string {
	out := ids(tasks)
	sort.Strings(out)
	return out
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces list and signals reload", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		store.AddTask("2", "B")
		rec := &tasklist.Recorder{}
		c := tasklist.New(store, tasklist.WithView(rec))

		require.NoError(t, c.Load(ctx))

		assert.Equal(t, []string{"1", "2"}, ids(c.Tasks()))
		assert.Equal(t, []tasklist.Event{{Kind: tasklist.EventReloaded, Index: -1}}, rec.Events)
	})

	t.Run("idempotent", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		store.AddTask("2", "B")
		c := tasklist.New(store)

		require.NoError(t, c.Load(ctx))
		first := c.Tasks()
		require.NoError(t, c.Load(ctx))

		assert.Equal(t, first, c.Tasks())
	})

	t.Run("failure keeps last good snapshot", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		c, rec := newLoaded(t, store)

		store.FetchAllErr = errCommit
		err := c.Load(ctx)

		require.Error(t, err)
		assert.ErrorIs(t, err, tasklist.ErrStoreUnavailable)
		assert.ErrorIs(t, err, errCommit)
		assert.Equal(t, []string{"1"}, ids(c.Tasks()))
		assert.Empty(t, rec.Events)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("appends with store id", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		c, rec := newLoaded(t, store)

		task, err := c.Create(ctx, "  Buy milk ")

		require.NoError(t, err)
		assert.Equal(t, "2", task.ID)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, []string{"1", "2"}, ids(c.Tasks()))
		assert.Equal(t, []tasklist.Event{{Kind: tasklist.EventInserted, Index: 1}}, rec.Events)
	})

	t.Run("round trip through load", func(t *testing.T) {
		store := testutil.NewFakeStore()
		c, _ := newLoaded(t, store)

		task, err := c.Create(ctx, "Buy milk")
		require.NoError(t, err)
		require.NoError(t, c.Load(ctx))

		tasks := c.Tasks()
		require.Len(t, tasks, 1)
		assert.Equal(t, "Buy milk", tasks[0].Title)
		assert.Equal(t, task.ID, tasks[0].ID)
	})

	t.Run("blank titles are ignored", func(t *testing.T) {
		for _, title := range []string{"", "   ", "\t\n"} {
			store := testutil.NewFakeStore()
			c, rec := newLoaded(t, store)
			before := store.TotalCalls()

			task, err := c.Create(ctx, title)

			require.NoError(t, err)
			assert.True(t, task.IsZero())
			assert.Equal(t, 0, c.Count())
			assert.Equal(t, before, store.TotalCalls(), "no store call for %q", title)
			assert.Empty(t, rec.Events)
		}
	})

	t.Run("commit failure rolls back", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		c, rec := newLoaded(t, store)
		store.InsertErr = errCommit

		task, err := c.Create(ctx, "B")

		require.Error(t, err)
		assert.ErrorIs(t, err, tasklist.ErrPersistence)
		assert.ErrorIs(t, err, errCommit)
		assert.True(t, task.IsZero())
		assert.Equal(t, []string{"1"}, ids(c.Tasks()))
		assert.Empty(t, rec.Events)
	})
}

func TestRename(t *testing.T) {
	ctx := context.Background()

	t.Run("updates in place", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		store.AddTask("2", "B")
		c, rec := newLoaded(t, store)

		require.NoError(t, c.Rename(ctx, "2", "B2"))

		assert.Equal(t, "B2", c.Title(1))
		assert.Equal(t, "B2", store.Snapshot()[1].Title)
		assert.Equal(t, []tasklist.Event{{Kind: tasklist.EventUpdated, Index: 1}}, rec.Events)
	})

	t.Run("commit failure rolls back", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		c, rec := newLoaded(t, store)
		store.UpdateErr = errCommit

		err := c.Rename(ctx, "1", "A2")

		require.Error(t, err)
		assert.ErrorIs(t, err, tasklist.ErrPersistence)
		assert.Equal(t, []service.Task{{ID: "1", Title: "A"}}, c.Tasks())
		assert.Empty(t, rec.Events)
	})

	t.Run("unknown id", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		c, rec := newLoaded(t, store)

		err := c.Rename(ctx, "999", "X")

		assert.ErrorIs(t, err, tasklist.ErrNotFound)
		assert.Equal(t, []service.Task{{ID: "1", Title: "A"}}, c.Tasks())
		assert.Equal(t, 0, store.Calls["Update"])
		assert.Empty(t, rec.Events)
	})

	t.Run("blank title is ignored", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		c, rec := newLoaded(t, store)

		require.NoError(t, c.Rename(ctx, "1", "  "))

		assert.Equal(t, "A", c.Title(0))
		assert.Equal(t, 0, store.Calls["Update"])
		assert.Empty(t, rec.Events)
	})

	t.Run("unchanged title skips commit", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		c, rec := newLoaded(t, store)

		require.NoError(t, c.Rename(ctx, "1", " A "))

		assert.Equal(t, 0, store.Calls["Update"])
		assert.Empty(t, rec.Events)
	})

	t.Run("task removed from store elsewhere", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		store.AddTask("2", "B")
		c, rec := newLoaded(t, store)
		require.NoError(t, store.Remove(ctx, "1"))

		err := c.Rename(ctx, "1", "A2")

		assert.ErrorIs(t, err, tasklist.ErrNotFound)
		assert.Equal(t, []string{"2"}, ids(c.Tasks()))
		assert.Equal(t, []tasklist.Event{{Kind: tasklist.EventRemoved, Index: 0}}, rec.Events)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes one row", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		store.AddTask("2", "B")
		c, rec := newLoaded(t, store)

		require.NoError(t, c.Delete(ctx, "1"))

		assert.Equal(t, []service.Task{{ID: "2", Title: "B"}}, c.Tasks())
		assert.Equal(t, []tasklist.Event{{Kind: tasklist.EventRemoved, Index: 0}}, rec.Events)
	})

	t.Run("commit failure restores position", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		store.AddTask("2", "B")
		store.AddTask("3", "C")
		c, rec := newLoaded(t, store)
		store.RemoveErr = errCommit

		err := c.Delete(ctx, "2")

		require.Error(t, err)
		assert.ErrorIs(t, err, tasklist.ErrPersistence)
		assert.Equal(t, []string{"1", "2", "3"}, ids(c.Tasks()))
		assert.Equal(t, []tasklist.Event{
			{Kind: tasklist.EventRemoved, Index: 1},
			{Kind: tasklist.EventInserted, Index: 1},
		}, rec.Events)
	})

	t.Run("unknown id", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		c, rec := newLoaded(t, store)

		err := c.Delete(ctx, "999")

		assert.ErrorIs(t, err, tasklist.ErrNotFound)
		assert.Equal(t, []string{"1"}, ids(c.Tasks()))
		assert.Equal(t, 0, store.Calls["Remove"])
		assert.Empty(t, rec.Events)
	})

	t.Run("already gone from store", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.AddTask("1", "A")
		c, _ := newLoaded(t, store)
		require.NoError(t, store.Remove(ctx, "1"))

		require.NoError(t, c.Delete(ctx, "1"))
		assert.Equal(t, 0, c.Count())
	})
}

func TestTaskAt(t *testing.T) {
	store := testutil.NewFakeStore()
	store.AddTask("1", "A")
	store.AddTask("2", "B")
	c, _ := newLoaded(t, store)

	task, err := c.TaskAt(1)
	require.NoError(t, err)
	assert.Equal(t, "2", task.ID)

	for _, index := range []int{-1, 2} {
		_, err := c.TaskAt(index)
		assert.ErrorIs(t, err, tasklist.ErrNotFound)
	}

	// A resolved identity survives reordering caused by an earlier delete.
	require.NoError(t, c.Delete(context.Background(), "1"))
	require.NoError(t, c.Rename(context.Background(), task.ID, "B2"))
	assert.Equal(t, "B2", c.Title(0))
	assert.Equal(t, "", c.Title(5))
}

// TestMemoryMirrorsStore runs random operations with random commit failures
// and checks after every step that the list holds the store's ids.
func TestMemoryMirrorsStore(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	store := testutil.NewFakeStore()
	c, _ := newLoaded(t, store)

	for step := 0; step < 500; step++ {
		fail := rng.Intn(4) == 0
		store.InsertErr, store.UpdateErr, store.RemoveErr = nil, nil, nil
		if fail {
			store.InsertErr, store.UpdateErr, store.RemoveErr = errCommit, errCommit, errCommit
		}

		switch op := rng.Intn(3); {
		case op == 0 || c.Count() == 0:
			_, _ = c.Create(ctx, "task "+strconv.Itoa(step))
		case op == 1:
			task, err := c.TaskAt(rng.Intn(c.Count()))
			require.NoError(t, err)
			_ = c.Rename(ctx, task.ID, "renamed "+strconv.Itoa(step))
		default:
			task, err := c.TaskAt(rng.Intn(c.Count()))
			require.NoError(t, err)
			_ = c.Delete(ctx, task.ID)
		}

		require.Equal(t, sortedIDs(store.Snapshot()), sortedIDs(c.Tasks()), "step %d", step)
		require.Equal(t, store.Snapshot(), c.Tasks(), "step %d", step)
	}
}

func TestConcurrentCreatesAreSerialized(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeStore()
	c, _ := newLoaded(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Create(ctx, "task "+strconv.Itoa(i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, c.Count())
	assert.Equal(t, store.Snapshot(), c.Tasks())
}
