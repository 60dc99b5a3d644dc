// Package api is the HTTP client for the remote task service.
package api

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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/tada-tasks/internal/model"
)

const (
	tasksPath      = "/api/tasks"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, msg)
}

// Client talks to the task service over JSON/HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *logrus.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithTimeout bounds each request. Zero disables the per-request deadline.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func WithLogger(l *logrus.Logger) Option { return func(c *Client) { c.logger = l } }

// New returns a client for the service rooted at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    http.DefaultClient,
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetOutput(io.Discard)
	}
	return c, nil
}

type createRequest struct {
	Text   string `json:"text"`
	Expire string `json:"expire,omitempty"`
}

// PostTask creates a task. Only text and expire are sent; the returned task
// carries the server-assigned id.
func (c *Client) PostTask(ctx context.Context, t model.Task) (model.Task, error) {
	var out model.Task
	req := createRequest{Text: t.Text, Expire: t.Expire}
	if err := c.do(ctx, "create task", http.MethodPost, tasksPath, req, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// PostTaskDone marks t as done. t must carry an id; otherwise
// model.ErrMissingID is returned and nothing is sent.
func (c *Client) PostTaskDone(ctx context.Context, t model.Task) (model.Task, error) {
	if !t.Persisted() {
		return model.Task{}, fmt.Errorf("mark done: %w", model.ErrMissingID)
	}
	path := tasksPath + "/" + strconv.Itoa(*t.ID) + "/done"
	var out model.Task
	if err := c.do(ctx, "mark done", http.MethodPatch, path, nil, &out); err != nil {
		return model.Task{}, err
	}
	if out.ID == nil {
		// No body: the service acknowledged without echoing the task.
		out = t
		out.Done = true
	}
	return out, nil
}

// ListTasks fetches the current tasks in server order.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, "list tasks", http.MethodGet, tasksPath, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Task{}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: json marshal: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.WithFields(logrus.Fields{
		"component":  "api_client",
		"request_id": requestID,
		"method":     method,
		"path":       path,
	})
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	log.WithFields(logrus.Fields{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out == nil {
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", op, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: json unmarshal: %w", op, err)
	}
	return nil
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
