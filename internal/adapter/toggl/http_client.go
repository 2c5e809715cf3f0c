package toggl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"toggl-assistant/internal/domain"
)

const (
	// DefaultBaseURL is the Toggl Track API v9 root.
	DefaultBaseURL = "https://api.track.toggl.com/api/v9"
	// CreatedWith identifies this tool on entries it creates.
	CreatedWith = "toggl-assistant"

	maxErrorBody    = 4096
	maxResponseBody = 16 << 20
)

var errStillRunning = errors.New("entry is still running after stop")

// Client implements ports.TogglClient using the Toggl Track API v9.
// It holds only immutable configuration and is safe to share.
type Client struct {
	baseURL   string
	workspace int64
	auth      AuthHeader
	http      *http.Client
	now       func() time.Time
}

// Option customises client construction.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithBaseURL points the client at another API root. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithClock overrides the clock used for start timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a client for one workspace. Both credentials are required;
// a *ConfigurationError is returned otherwise.
func NewClient(apiKey, workspaceID string, opts ...Option) (*Client, error) {
	auth, err := NewAuthHeader(apiKey)
	if err != nil {
		return nil, err
	}
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, &ConfigurationError{Field: "workspace id"}
	}
	ws, err := strconv.ParseInt(workspaceID, 10, 64)
	if err != nil || ws <= 0 {
		return nil, &ConfigurationError{Field: "workspace id", Reason: "must be a positive integer"}
	}
	c := &Client{
		baseURL:   DefaultBaseURL,
		workspace: ws,
		auth:      auth,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WorkspaceID returns the workspace the client is scoped to.
func (c *Client) WorkspaceID() int64 { return c.workspace }

// StartEntry creates a running entry starting now.
// Toggl v9: POST /workspaces/{wid}/time_entries
func (c *Client) StartEntry(ctx context.Context, description string, projectID *int64) (domain.TimeEntry, error) {
	const op = "start entry"
	req := domain.TimeEntryCreateRequest{
		WorkspaceID: c.workspace,
		Description: description,
		DurationSec: -1,
		Start:       c.now().UTC(),
		ProjectID:   projectID,
		Tags:        []string{},
		Billable:    false,
		CreatedWith: CreatedWith,
	}
	path := fmt.Sprintf("/workspaces/%d/time_entries", c.workspace)
	body, err := c.do(ctx, op, http.MethodPost, path, nil, newCreateTimeEntryBody(req))
	if err != nil {
		return domain.TimeEntry{}, err
	}
	entry, err := decodeTimeEntry(body)
	if err != nil {
		return domain.TimeEntry{}, &DecodeError{Op: op, Err: err}
	}
	return entry, nil
}

// CurrentEntry fetches the running entry of the authenticated user.
// ok is false when nothing is running.
// Toggl v9: GET /me/time_entries/current
func (c *Client) CurrentEntry(ctx context.Context) (entry domain.TimeEntry, ok bool, err error) {
	const op = "current entry"
	body, err := c.do(ctx, op, http.MethodGet, "/me/time_entries/current", nil, nil)
	if err != nil {
		return domain.TimeEntry{}, false, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return domain.TimeEntry{}, false, nil
	}
	entry, err = decodeTimeEntry(trimmed)
	if err != nil {
		return domain.TimeEntry{}, false, &DecodeError{Op: op, Err: err}
	}
	return entry, true, nil
}

// StopEntry stops the entry with the given id. A reply that still
// describes a running entry is a *DecodeError.
// Toggl v9: PATCH /workspaces/{wid}/time_entries/{id}/stop
func (c *Client) StopEntry(ctx context.Context, id int64) (domain.TimeEntry, error) {
	const op = "stop entry"
	if id <= 0 {
		return domain.TimeEntry{}, ErrInvalidEntryID
	}
	path := fmt.Sprintf("/workspaces/%d/time_entries/%d/stop", c.workspace, id)
	body, err := c.do(ctx, op, http.MethodPatch, path, nil, nil)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	entry, err := decodeTimeEntry(body)
	if err != nil {
		return domain.TimeEntry{}, &DecodeError{Op: op, Err: err}
	}
	if entry.Running() {
		return domain.TimeEntry{}, &DecodeError{Op: op, Err: errStillRunning}
	}
	return entry, nil
}

// StopRunningEntry stops whatever is currently running. The API has no
// endpoint for this, so it looks up the current entry first.
func (c *Client) StopRunningEntry(ctx context.Context) (domain.TimeEntry, error) {
	current, ok, err := c.CurrentEntry(ctx)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if !ok || !current.Running() {
		return domain.TimeEntry{}, ErrNoRunningEntry
	}
	return c.StopEntry(ctx, current.ID)
}

// ListProjects fetches projects of the configured workspace in service order.
// Toggl v9: GET /workspaces/{wid}/projects
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	const op = "list projects"
	path := fmt.Sprintf("/workspaces/%d/projects", c.workspace)
	body, err := c.do(ctx, op, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	projects, err := decodeList(body, decodeProject)
	if err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return projects, nil
}

// ListProjectMemberships fetches project users of the configured workspace.
// Toggl v9: GET /workspaces/{wid}/project_users
func (c *Client) ListProjectMemberships(ctx context.Context) ([]domain.ProjectMembership, error) {
	const op = "list project memberships"
	path := fmt.Sprintf("/workspaces/%d/project_users", c.workspace)
	body, err := c.do(ctx, op, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	members, err := decodeList(body, decodeProjectMembership)
	if err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return members, nil
}

// ListTimeEntries fetches entries in [from, to].
// Toggl v9: GET /me/time_entries?start_date=...&end_date=...
func (c *Client) ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	const op = "list time entries"
	q := url.Values{}
	q.Set("start_date", from.UTC().Format(time.RFC3339))
	q.Set("end_date", to.UTC().Format(time.RFC3339))
	body, err := c.do(ctx, op, http.MethodGet, "/me/time_entries", q, nil)
	if err != nil {
		return nil, err
	}
	entries, err := decodeList(body, decodeTimeEntry)
	if err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return entries, nil
}

// do sends one request and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("toggl: %s: encode request body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("toggl: %s: create request: %w", op, err)
	}
	c.auth.Apply(req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}
