package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return client
}

func TestToTask(t *testing.T) {
	assert.Equal(t, Task{}, toTask(nil))

	task := toTask(&tasks.Task{
		Id:          "task-1",
		Title:       "Google Calendar Room Utilization Results 02/01/2021",
		Notes:       "report",
		Status:      "needsAction",
		WebViewLink: "https://tasks.google.com/task/task-1",
	})

	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, "report", task.Notes)
	assert.Equal(t, "https://tasks.google.com/task/task-1", task.WebLink)
	assert.Equal(t, "needsAction", task.Status)
}

func TestCreateTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks/v1/lists/list-1/tasks", r.URL.Path)

		var body tasks.Task
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "title", body.Title)
		assert.Empty(t, body.Due)

		body.Id = "created-1"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	task, err := client.CreateTask(context.Background(), "list-1", TaskInput{
		Title: "title",
		Notes: "notes",
	})
	require.NoError(t, err)
	assert.Equal(t, "created-1", task.ID)
	assert.Equal(t, "notes", task.Notes)
}

func TestPublisher_Publish(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/v1/lists/@default/tasks", r.URL.Path)

		var body tasks.Task
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Google Calendar Room Utilization Results 02/01/2021", body.Title)
		assert.Equal(t, "Everest Utilization %: 20.00", body.Notes)
		assert.Empty(t, body.Due)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "t-9", "webViewLink": "https://tasks.google.com/task/t-9"}`))
	})

	publisher := NewPublisher(client, "")
	assert.Equal(t, PublisherName, publisher.Name())

	published, err := publisher.Publish(context.Background(),
		"Google Calendar Room Utilization Results 02/01/2021", "Everest Utilization %: 20.00")
	require.NoError(t, err)

	assert.Equal(t, PublisherName, published.Publisher)
	assert.Equal(t, "t-9", published.ID)
	assert.Equal(t, "https://tasks.google.com/task/t-9", published.URL)
}

func TestPublisher_Error(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "Request had insufficient authentication scopes."}}`))
	})

	_, err := NewPublisher(client, "list-1").Publish(context.Background(), "t", "n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient authentication scopes")
}
