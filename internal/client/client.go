// Package client is a typed HTTP client for the myway REST API. It lets the
// terminal client run against a remote server, and records pomodoro
// sessions there.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/myway/internal/analytics"
	"github.com/sadopc/myway/internal/files"
	"github.com/sadopc/myway/internal/service"
	"github.com/sadopc/myway/internal/store"
)

// APIError is a non-2xx response. It unwraps to store.ErrNotFound or
// service.ErrValidation where the status code says so.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("myway: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return store.ErrNotFound
	case http.StatusBadRequest:
		return service.ErrValidation
	}
	return nil
}

type Client struct {
	base string
	http *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("myway: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("myway: build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("myway: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(b, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(b))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("myway: decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *Client) ListModules(ctx context.Context) ([]store.Module, error) {
	var out []store.Module
	return out, c.do(ctx, http.MethodGet, "/api/modules", nil, &out)
}

func (c *Client) GetModule(ctx context.Context, id int64) (*store.ModuleDetail, error) {
	var out store.ModuleDetail
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/modules/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateModule(ctx context.Context, in store.ModuleInput) (*store.Module, error) {
	var out store.Module
	if err := c.do(ctx, http.MethodPost, "/api/modules", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateModule(ctx context.Context, id int64, in store.ModuleInput) (*store.Module, error) {
	var out store.Module
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/modules/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteModule(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/modules/%d", id), nil, nil)
}

func (c *Client) ListResources(ctx context.Context, moduleID int64) ([]store.Resource, error) {
	var out []store.Resource
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/api/modules/%d/resources", moduleID), nil, &out)
}

// CreateResource posts JSON, or a multipart form when up is set.
func (c *Client) CreateResource(ctx context.Context, moduleID int64, in store.ResourceInput, up *files.Upload) (*store.Resource, error) {
	path := fmt.Sprintf("/api/modules/%d/resources", moduleID)
	var out store.Resource
	if up == nil {
		if err := c.do(ctx, http.MethodPost, path, in, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"title": in.Title, "type": in.Type, "content": in.Content} {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("file", up.Name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, up.Body); err != nil {
		return nil, fmt.Errorf("myway: read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateResource(ctx context.Context, id int64, in store.ResourceInput) (*store.Resource, error) {
	var out store.Resource
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/resources/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteResource(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/resources/%d", id), nil, nil)
}

func (c *Client) AccessResource(ctx context.Context, id int64) (*store.Resource, error) {
	var out store.Resource
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/resources/%d/access", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadURL is where the server serves a file resource's blob.
func (c *Client) UploadURL(name string) string {
	return c.base + "/api/uploads/" + url.PathEscape(name)
}

func (c *Client) ListTodos(ctx context.Context, moduleID int64) ([]store.Todo, error) {
	var out []store.Todo
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/api/modules/%d/todos", moduleID), nil, &out)
}

func (c *Client) CreateTodo(ctx context.Context, moduleID int64, in store.TodoInput) (*store.Todo, error) {
	var out store.Todo
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/modules/%d/todos", moduleID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTodo(ctx context.Context, id int64, in store.TodoInput) (*store.Todo, error) {
	var out store.Todo
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/todos/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ToggleTodo(ctx context.Context, id int64) (*store.Todo, error) {
	var out store.Todo
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/todos/%d/toggle", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/todos/%d", id), nil, nil)
}

func (c *Client) CreateSession(ctx context.Context, in store.NewSession) (*store.Session, error) {
	var out store.Session
	if err := c.do(ctx, http.MethodPost, "/api/pomodoro/sessions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSession(ctx context.Context, id, actual int64) (*store.Session, error) {
	var out store.Session
	body := map[string]int64{"actual_duration": actual}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/pomodoro/sessions/%d/update", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FinalizeSession(ctx context.Context, id, actual int64, completedAt time.Time, status string) (*store.Session, error) {
	body := struct {
		ActualDuration int64      `json:"actual_duration"`
		CompletedAt    *time.Time `json:"completed_at,omitempty"`
		Status         string     `json:"status"`
	}{ActualDuration: actual, Status: status}
	if !completedAt.IsZero() {
		body.CompletedAt = &completedAt
	}
	var out store.Session
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/pomodoro/sessions/%d/complete", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func sessionQuery(f store.SessionFilter) url.Values {
	q := url.Values{}
	if f.ModuleID != nil {
		q.Set("module_id", strconv.FormatInt(*f.ModuleID, 10))
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Type != "" {
		q.Set("session_type", f.Type)
	}
	setWindow(q, f.From, f.To)
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// setWindow only sends a date window when both ends are known, which is
// the only case the server honors.
func setWindow(q url.Values, from, to *time.Time) {
	if from != nil && to != nil {
		q.Set("start_date", from.UTC().Format(time.DateOnly))
		q.Set("end_date", to.UTC().Format(time.DateOnly))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (c *Client) ListSessions(ctx context.Context, f store.SessionFilter) ([]store.Session, error) {
	var out []store.Session
	return out, c.do(ctx, http.MethodGet, withQuery("/api/pomodoro/sessions", sessionQuery(f)), nil, &out)
}

func (c *Client) SessionStats(ctx context.Context, f store.SessionFilter) (*analytics.SessionStats, error) {
	var out analytics.SessionStats
	if err := c.do(ctx, http.MethodGet, withQuery("/api/pomodoro/sessions/stats", sessionQuery(f)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Overview(ctx context.Context) (*analytics.Overview, error) {
	var out analytics.Overview
	if err := c.do(ctx, http.MethodGet, "/api/analytics/overview", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FocusByModule(ctx context.Context, from, to *time.Time) ([]analytics.ModuleFocus, error) {
	q := url.Values{}
	setWindow(q, from, to)
	var out []analytics.ModuleFocus
	return out, c.do(ctx, http.MethodGet, withQuery("/api/analytics/pomodoro-by-module", q), nil, &out)
}

func (c *Client) ModuleEngagement(ctx context.Context) ([]analytics.ModuleEngagement, error) {
	var out []analytics.ModuleEngagement
	return out, c.do(ctx, http.MethodGet, "/api/analytics/module-engagement", nil, &out)
}

func (c *Client) TodoTrends(ctx context.Context, period int, moduleID *int64) ([]analytics.TrendPoint, error) {
	q := url.Values{}
	if period > 0 {
		q.Set("period", strconv.Itoa(period))
	}
	if moduleID != nil {
		q.Set("module_id", strconv.FormatInt(*moduleID, 10))
	}
	var out []analytics.TrendPoint
	return out, c.do(ctx, http.MethodGet, withQuery("/api/analytics/todo-trends", q), nil, &out)
}

func (c *Client) ProductivityPatterns(ctx context.Context) (*analytics.Patterns, error) {
	var out analytics.Patterns
	if err := c.do(ctx, http.MethodGet, "/api/analytics/productivity-patterns", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Settings(ctx context.Context) ([]store.Setting, error) {
	var out []store.Setting
	return out, c.do(ctx, http.MethodGet, "/api/settings", nil, &out)
}

func (c *Client) Weights(ctx context.Context) (analytics.Weights, error) {
	var out analytics.Weights
	return out, c.do(ctx, http.MethodGet, "/api/settings/weights", nil, &out)
}

func (c *Client) SetWeights(ctx context.Context, w analytics.Weights) (analytics.Weights, error) {
	var out analytics.Weights
	return out, c.do(ctx, http.MethodPut, "/api/settings/weights", w, &out)
}

// IsNotFound reports whether err is a missing-row error from either side
// of the wire.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
