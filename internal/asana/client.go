package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/teemow/roomutil/internal/instrumentation"
)

const defaultBaseURL = "https://app.asana.com/api/1.0"

// Client talks to the Asana API with a personal access token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	metrics *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// NewClient returns a client authenticating with the given personal access token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL points the client at another API root. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithMetrics records API calls on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// TaskInput is the body of a task creation request.
type TaskInput struct {
	Workspace string   `json:"workspace"`
	Projects  []string `json:"projects,omitempty"`
	Name      string   `json:"name"`
	Notes     string   `json:"notes,omitempty"`
}

// Task is the subset of Asana's task representation returned on creation.
type Task struct {
	GID          string `json:"gid"`
	Name         string `json:"name"`
	PermalinkURL string `json:"permalink_url"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// APIError is a non-2xx response from Asana.
type APIError struct {
	StatusCode int
	Status     string
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("asana: %s", e.Status)
	}
	return fmt.Sprintf("asana: %s: %s", e.Status, strings.Join(e.Messages, "; "))
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// CreateTask creates a task and returns it.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*Task, error) {
	ctx, span := instrumentation.StartAPISpan(ctx, instrumentation.ServiceAsana, instrumentation.OperationCreate)
	defer span.End()

	start := time.Now()
	var out envelope[Task]
	err := c.do(ctx, http.MethodPost, "/tasks", envelope[TaskInput]{Data: input}, &out)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordAPIOperation(ctx, instrumentation.ServiceAsana, instrumentation.OperationCreate, status, time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
		var er errorResponse
		if json.Unmarshal(respBytes, &er) == nil {
			for _, e := range er.Errors {
				apiErr.Messages = append(apiErr.Messages, e.Message)
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
