package ticktick

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// tickMockAuth stubs the authenticator with a fixed token.
type tickMockAuth struct {
	token string
	state domain.AuthState
}

func (a *tickMockAuth) Token(_ context.Context, _ string) (string, error) {
	return a.token, nil
}

func (a *tickMockAuth) State(_ context.Context, _ string) domain.AuthState {
	return a.state
}

func newTestPlugin(baseURL string) *Plugin {
	p := New(&tickMockAuth{token: "tok", state: domain.AuthStateAuthenticated})
	p.baseURL = baseURL
	return p
}

func drain(t *testing.T, p *Plugin) ([]domain.RawItem, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	itemsCh, errsCh := p.Fetch(ctx, domain.PluginConfig{}, time.Time{})

	var items []domain.RawItem
	for itemsCh != nil || errsCh != nil {
		select {
		case item, ok := <-itemsCh:
			if !ok {
				itemsCh = nil
				continue
			}
			items = append(items, item)
		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if err != nil {
				return items, err
			}
		}
	}
	return items, nil
}

func TestFetch_MapsTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/batch/check/0", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var query batchQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
		require.Len(t, query.Queries, 1)
		assert.Equal(t, []int{statusOpen, statusCompleted}, query.Queries[0].Status)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tasks": [
			{
				"id": "t1", "title": "Buy milk", "status": 0,
				"projectName": "Groceries", "priority": 5,
				"tags": ["errand"], "dueDate": 1772409600000,
				"modifiedTime": 1772323200000
			},
			{
				"id": "t2", "title": "Ship release", "content": "tag and push",
				"status": 2, "createdTime": 1772236800000
			}
		]}`))
	}))
	defer srv.Close()

	items, err := drain(t, newTestPlugin(srv.URL))
	require.NoError(t, err)
	require.Len(t, items, 2)

	open := items[0]
	assert.Equal(t, "ticktick_task_t1", open.SourceID)
	assert.Equal(t, "ticktick_task", open.ItemType)
	assert.Equal(t, "Buy milk (Open)", open.Title)
	assert.Contains(t, open.Content, "Project: Groceries")
	assert.Contains(t, open.Content, "Priority: High")
	assert.Contains(t, open.Content, "Tags: errand")
	assert.Equal(t, "open", open.Metadata["status"])
	assert.Equal(t, time.UnixMilli(1772323200000).UTC(), open.SourceTimestamp)

	done := items[1]
	assert.Equal(t, "Ship release (Completed)", done.Title)
	assert.Contains(t, done.Content, "Description: tag and push")
	assert.Equal(t, "completed", done.Metadata["status"])
	assert.Equal(t, time.UnixMilli(1772236800000).UTC(), done.SourceTimestamp)
}

func TestFetch_DataEnvelopeFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": [{"id": "t3", "title": "Fallback", "status": 0}]}`))
	}))
	defer srv.Close()

	items, err := drain(t, newTestPlugin(srv.URL))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ticktick_task_t3", items[0].SourceID)
}

func TestFetch_UnauthorizedClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := drain(t, newTestPlugin(srv.URL))
	require.Error(t, err)
	assert.True(t, domain.IsAuthError(err))
}

func TestFetch_ConnectionErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	_, err := drain(t, newTestPlugin(srv.URL))
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err), "a failed connection is retryable")
}

func TestTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		w.Write([]byte(`{"username": "me@example.com"}`))
	}))
	defer srv.Close()

	assert.NoError(t, newTestPlugin(srv.URL).TestConnection(context.Background()))
}

func TestTaskToItem_Defaults(t *testing.T) {
	item := taskToItem(task{ID: "t9"})

	assert.Equal(t, "Untitled Task (Open)", item.Title)
	assert.Contains(t, item.Content, "Task: Untitled Task")
	assert.WithinDuration(t, time.Now().UTC(), item.SourceTimestamp, time.Minute)
}

func TestFormatTask_Dates(t *testing.T) {
	content := formatTask(task{
		Title:    "x",
		DueDate:  time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC).UnixMilli(),
		Priority: 2,
	}, "x")

	assert.Contains(t, content, "Due Date: 2026-03-02 12:30:00 UTC")
	assert.Contains(t, content, "Priority: Unknown")
}
