package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	tasks "google.golang.org/api/tasks/v1"

	"tasklist/internal/service"
)

const testList = "L1"

// fakeAPI serves the subset of the Tasks API the client uses.
type fakeAPI struct {
	mu       sync.Mutex
	items    []*tasks.Task
	nextID   int
	status   int
	previous []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		writeError(w, f.status)
		return
	}

	prefix := "/tasks/v1/lists/" + testList + "/tasks"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeError(w, http.StatusNotFound)
		return
	}
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")

	switch {
	case r.Method == http.MethodGet && id == "":
		f.list(w, r)
	case r.Method == http.MethodPost && id == "":
		f.insert(w, r)
	case r.Method == http.MethodPatch:
		f.patch(w, r, id)
	case r.Method == http.MethodDelete:
		f.delete(w, id)
	default:
		writeError(w, http.StatusMethodNotAllowed)
	}
}

// list returns top-level items in reverse order, split over two pages.
func (f *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	all := make([]*tasks.Task, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0; i-- {
		t := *f.items[i]
		t.Position = fmt.Sprintf("%020d", i)
		all = append(all, &t)
	}

	resp := tasks.Tasks{Kind: "tasks#tasks"}
	if r.URL.Query().Get("pageToken") == "" && len(all) > 1 {
		resp.Items = all[:1]
		resp.NextPageToken = "page2"
	} else if r.URL.Query().Get("pageToken") == "page2" {
		resp.Items = all[1:]
	} else {
		resp.Items = all
	}
	writeJSON(w, resp)
}

func (f *fakeAPI) insert(w http.ResponseWriter, r *http.Request) {
	var t tasks.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}
	f.nextID++
	t.Id = fmt.Sprintf("t%d", f.nextID)

	prev := r.URL.Query().Get("previous")
	f.previous = append(f.previous, prev)
	at := 0
	for i, item := range f.items {
		if item.Id == prev {
			at = i + 1
		}
	}
	f.items = append(f.items[:at], append([]*tasks.Task{&t}, f.items[at:]...)...)
	writeJSON(w, t)
}

func (f *fakeAPI) patch(w http.ResponseWriter, r *http.Request, id string) {
	i := f.index(id)
	if i < 0 {
		writeError(w, http.StatusNotFound)
		return
	}
	var t tasks.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}
	f.items[i].Title = t.Title
	writeJSON(w, f.items[i])
}

func (f *fakeAPI) delete(w http.ResponseWriter, id string) {
	i := f.index(id)
	if i < 0 {
		writeError(w, http.StatusNotFound)
		return
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeAPI) index(id string) int {
	for i, t := range f.items {
		if t.Id == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, code, http.StatusText(code))
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewWithHTTPClient(context.Background(), srv.Client(), srv.URL+"/", testList)
	require.NoError(t, err)
	return c, api
}

func TestClient_CRUD(t *testing.T) {
	ctx := context.Background()
	c, api := newTestClient(t)

	a, err := c.Insert(ctx, "Buy milk")
	require.NoError(t, err)
	b, err := c.Insert(ctx, "Walk dog")
	require.NoError(t, err)
	assert.Equal(t, service.Task{ID: "t1", Title: "Buy milk"}, a)
	assert.Equal(t, service.Task{ID: "t2", Title: "Walk dog"}, b)

	// New tasks go after the current last one.
	assert.Equal(t, []string{"", "t1"}, api.previous)

	require.NoError(t, c.Update(ctx, a.ID, "Buy oat milk"))

	got, err := c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Task{
		{ID: "t1", Title: "Buy oat milk"},
		{ID: "t2", Title: "Walk dog"},
	}, got)

	require.NoError(t, c.Remove(ctx, a.ID))
	got, err = c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Task{{ID: "t2", Title: "Walk dog"}}, got)
}

func TestClient_SkipsSubtasks(t *testing.T) {
	c, api := newTestClient(t)
	api.items = []*tasks.Task{
		{Id: "p", Title: "parent"},
		{Id: "c", Title: "child", Parent: "p"},
	}

	got, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []service.Task{{ID: "p", Title: "parent"}}, got)
}

func TestClient_NotFound(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	assert.ErrorIs(t, c.Update(ctx, "missing", "x"), service.ErrNotFound)
	assert.ErrorIs(t, c.Remove(ctx, "missing"), service.ErrNotFound)
}

func TestClient_AuthErrors(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			c, api := newTestClient(t)
			api.status = code

			_, err := c.FetchAll(context.Background())
			assert.ErrorIs(t, err, service.ErrUnauthorized)
		})
	}
}

func TestClient_DefaultListID(t *testing.T) {
	c, err := NewWithHTTPClient(context.Background(), http.DefaultClient, "http://localhost/", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultListID, c.ListID())
}

func TestWrapError(t *testing.T) {
	other := errors.New("boom")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ErrTimeout},
		{"401", &googleapi.Error{Code: 401}, service.ErrUnauthorized},
		{"403", &googleapi.Error{Code: 403}, service.ErrUnauthorized},
		{"404", &googleapi.Error{Code: 404}, service.ErrNotFound},
		{"refresh", &oauth2.RetrieveError{Response: &http.Response{Status: "400 Bad Request"}}, service.ErrUnauthorized},
		{"other", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}
