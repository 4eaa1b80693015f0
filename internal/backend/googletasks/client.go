// Package googletasks implements service.Store on one Google Tasks list.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasklist/internal/config"
	"tasklist/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second
)

// ErrTimeout reports an API call that exceeded APITimeout.
var ErrTimeout = errors.New("request timed out")

// Client implements service.Store using the Google Tasks API.
// Only top-level tasks are managed; subtasks are ignored.
type Client struct {
	svc    *tasks.Service
	listID string
	logger *log.Logger
}

// New creates a client for cfg.GoogleTasks.List.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	oauthConfig, err := LoadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}

	// The token source refreshes the access token as needed.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return newClient(svc, cfg.GoogleTasks.List, logger), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and API
// endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint, listID string) (*Client, error) {
	svc, err := tasks.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(endpoint),
	)
	if err != nil {
		return nil, err
	}
	return newClient(svc, listID, nil), nil
}

func newClient(svc *tasks.Service, listID string, logger *log.Logger) *Client {
	if listID == "" {
		listID = DefaultListID
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{svc: svc, listID: listID, logger: logger}
}

// ListID returns the managed list.
func (c *Client) ListID() string {
	return c.listID
}

// FetchAll implements service.Store. Open top-level tasks are returned in
// list position order.
func (c *Client) FetchAll(ctx context.Context) ([]service.Task, error) {
	items, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]service.Task, 0, len(items))
	for _, t := range items {
		result = append(result, service.Task{ID: t.Id, Title: t.Title})
	}
	return result, nil
}

func (c *Client) fetch(ctx context.Context) ([]*tasks.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var items []*tasks.Task
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(false).
		ShowDeleted(false).
		ShowHidden(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				if t.Parent != "" {
					continue
				}
				items = append(items, t)
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	// Positions are zero-padded and compare lexically.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
	return items, nil
}

// Insert implements service.Store. The task is placed after the current
// last task so the list keeps creation order.
func (c *Client) Insert(ctx context.Context, title string) (service.Task, error) {
	existing, err := c.fetch(ctx)
	if err != nil {
		return service.Task{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	call := c.svc.Tasks.Insert(c.listID, &tasks.Task{Title: title})
	if n := len(existing); n > 0 {
		call = call.Previous(existing[n-1].Id)
	}
	created, err := call.Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	c.logger.Debug("google insert", "id", created.Id)
	return service.Task{ID: created.Id, Title: created.Title}, nil
}

// Update implements service.Store.
func (c *Client) Update(ctx context.Context, id, title string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.svc.Tasks.Patch(c.listID, id, &tasks.Task{Title: title}).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	c.logger.Debug("google update", "id", id)
	return nil
}

// Remove implements service.Store.
func (c *Client) Remove(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	c.logger.Debug("google delete", "id", id)
	return nil
}

// wrapError maps API errors to the store contract and user-facing messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return service.ErrUnauthorized
		case http.StatusNotFound:
			return service.ErrNotFound
		}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return service.ErrUnauthorized
	}
	return err
}
