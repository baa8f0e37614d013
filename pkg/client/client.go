// Package client is an HTTP client for the eventops API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nkkko/eventops/pkg/model"
)

// Client is an HTTP client for interacting with the eventops API
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithHeaders sets additional HTTP headers
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers.Set(k, v)
		}
	}
}

// New creates a new API client
func New(baseURL string, options ...ClientOption) *Client {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		headers:    headers,
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// Error is a non-2xx response from the API
type Error struct {
	Status  int
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error (%d)", e.Status)
	}
	return fmt.Sprintf("API error (%d) %s: %s", e.Status, e.Code, e.Message)
}

// Snapshot is a view snapshot with its data left undecoded
type Snapshot struct {
	View     string          `json:"view"`
	Version  uint64          `json:"version"`
	LoadedAt time.Time       `json:"loaded_at"`
	Data     json.RawMessage `json:"data"`
}

// ViewParams narrows a view read
type ViewParams struct {
	EventID string
	Filter  string
	ID      string
}

// CreateEvent creates an event
func (c *Client) CreateEvent(ctx context.Context, orgID string, req model.CreateEventRequest) (*model.Event, error) {
	var event model.Event
	if err := c.do(ctx, http.MethodPost, orgPath(orgID, "events"), req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateTask creates a task
func (c *Client) CreateTask(ctx context.Context, orgID string, req model.CreateTaskRequest) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, orgPath(orgID, "tasks"), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskStatus moves a task to status
func (c *Client) UpdateTaskStatus(ctx context.Context, orgID, taskID string, status model.TaskStatus) (*model.Task, error) {
	var task model.Task
	body := model.UpdateTaskStatusRequest{Status: status}
	if err := c.do(ctx, http.MethodPatch, orgPath(orgID, "tasks", taskID, "status"), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, orgID, taskID string) error {
	return c.do(ctx, http.MethodDelete, orgPath(orgID, "tasks", taskID), nil, nil)
}

// Invalidate publishes keys given in slash form, e.g. "tasks/org-1"
func (c *Client) Invalidate(ctx context.Context, keys ...string) ([]string, error) {
	var resp struct {
		Keys []string `json:"keys"`
	}
	if err := c.do(ctx, http.MethodPost, "/invalidate", model.InvalidateRequest{Keys: keys}, &resp); err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

// Views lists the view names the server knows
func (c *Client) Views(ctx context.Context, orgID string) ([]string, error) {
	var resp struct {
		Views []string `json:"views"`
	}
	if err := c.do(ctx, http.MethodGet, orgPath(orgID, "views"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Views, nil
}

// View reads a view snapshot
func (c *Client) View(ctx context.Context, orgID, name string, params ViewParams) (*Snapshot, error) {
	q := url.Values{}
	if params.EventID != "" {
		q.Set("event", params.EventID)
	}
	if params.Filter != "" {
		q.Set("filter", params.Filter)
	}
	if params.ID != "" {
		q.Set("id", params.ID)
	}

	path := orgPath(orgID, "views", name)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var snap Snapshot
	if err := c.do(ctx, http.MethodGet, path, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func orgPath(orgID string, parts ...string) string {
	escaped := make([]string, 0, len(parts)+2)
	escaped = append(escaped, "orgs", url.PathEscape(orgID))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return "/" + strings.Join(escaped, "/")
}

// do makes an HTTP request and unwraps the response envelope into out
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error *Error          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil && err != io.EOF {
		if resp.StatusCode >= 400 {
			return &Error{Status: resp.StatusCode}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if envelope.Error == nil {
			return &Error{Status: resp.StatusCode}
		}
		envelope.Error.Status = resp.StatusCode
		return envelope.Error
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
