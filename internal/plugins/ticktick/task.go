package ticktick

import (
	"fmt"
	"strings"
	"time"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// Task statuses in the TickTick API.
const (
	statusOpen      = 0
	statusCompleted = 2
)

// task is one TickTick task as returned by the batch query endpoint.
// Timestamps are Unix milliseconds.
type task struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Status       int      `json:"status"`
	ProjectID    string   `json:"projectId"`
	ProjectName  string   `json:"projectName"`
	DueDate      int64    `json:"dueDate"`
	StartDate    int64    `json:"startDate"`
	CreatedTime  int64    `json:"createdTime"`
	ModifiedTime int64    `json:"modifiedTime"`
	Priority     int      `json:"priority"`
	Tags         []string `json:"tags"`
}

var priorityNames = map[int]string{1: "Low", 3: "Medium", 5: "High"}

func (t task) completed() bool {
	return t.Status == statusCompleted
}

func (t task) statusLabel() string {
	if t.completed() {
		return "Completed"
	}
	return "Open"
}

// taskToItem maps one task onto the raw item shape. The task ID is
// stable across completion-state changes, so a completed task never
// re-imports as a new record.
func taskToItem(t task) domain.RawItem {
	title := t.Title
	if title == "" {
		title = "Untitled Task"
	}

	return domain.RawItem{
		SourceID: "ticktick_task_" + t.ID,
		ItemType: "ticktick_task",
		Title:    fmt.Sprintf("%s (%s)", title, t.statusLabel()),
		Content:  formatTask(t, title),
		Metadata: map[string]any{
			"task_id":      t.ID,
			"status":       strings.ToLower(t.statusLabel()),
			"project_id":   t.ProjectID,
			"project_name": t.ProjectName,
			"priority":     t.Priority,
			"tags":         t.Tags,
		},
		SourceTimestamp: taskTime(t),
	}
}

// formatTask renders the task as readable lines.
func formatTask(t task, title string) string {
	lines := []string{
		"Task: " + title,
		"Status: " + t.statusLabel(),
	}
	if t.ProjectName != "" {
		lines = append(lines, "Project: "+t.ProjectName)
	}
	if t.Content != "" {
		lines = append(lines, "Description: "+t.Content)
	}
	if t.DueDate > 0 {
		lines = append(lines, "Due Date: "+formatMillis(t.DueDate))
	}
	if t.StartDate > 0 {
		lines = append(lines, "Start Date: "+formatMillis(t.StartDate))
	}
	if t.Priority > 0 {
		name, ok := priorityNames[t.Priority]
		if !ok {
			name = "Unknown"
		}
		lines = append(lines, "Priority: "+name)
	}
	if len(t.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(t.Tags, ", "))
	}
	return strings.Join(lines, "\n")
}

func formatMillis(millis int64) string {
	return time.UnixMilli(millis).UTC().Format("2006-01-02 15:04:05 UTC")
}

// taskTime prefers the modification time, then creation time, then now.
func taskTime(t task) time.Time {
	switch {
	case t.ModifiedTime > 0:
		return time.UnixMilli(t.ModifiedTime).UTC()
	case t.CreatedTime > 0:
		return time.UnixMilli(t.CreatedTime).UTC()
	default:
		return time.Now().UTC()
	}
}
