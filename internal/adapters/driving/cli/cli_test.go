package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// newTestCmd returns a command whose output is captured in the buffer.
func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd, buf
}

// cliMockSearch returns canned search results.
type cliMockSearch struct {
	results []domain.SearchResult
	err     error
	query   string
	opts    domain.SearchOptions
}

func (m *cliMockSearch) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

// cliMockImporter returns canned runs.
type cliMockImporter struct {
	runs []domain.ImportRun
	rc   domain.RunContext
}

func (m *cliMockImporter) Run(_ context.Context, rc domain.RunContext) ([]domain.ImportRun, error) {
	m.rc = rc
	return m.runs, nil
}

func (m *cliMockImporter) Runs(_ context.Context, _ string, _ int) ([]domain.ImportRun, error) {
	return m.runs, nil
}

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			Record: domain.Record{
				SourcePlugin:    "gmail",
				SourceID:        "msg-1",
				ItemType:        "email",
				Title:           "Quarterly planning",
				Content:         "Agenda for the quarterly planning meeting.",
				SourceTimestamp: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
			},
			Score: 0.91,
		},
		{
			Record: domain.Record{
				SourcePlugin:    "whoop",
				SourceID:        "recovery_2026-03-01",
				ItemType:        "whoop_recovery",
				Title:           "Recovery - 2026-03-01",
				Content:         "Recovery Score: 72",
				SourceTimestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			Score: 0.64,
		},
	}
}

func TestRunSearch_Table(t *testing.T) {
	mock := &cliMockSearch{results: sampleResults()}
	searchService = mock
	defer func() { searchService = nil }()

	searchTopK = 10
	searchPlugin = "gmail"
	searchJSON = false

	cmd, buf := newTestCmd()
	require.NoError(t, runSearch(cmd, []string{"planning meeting"}))

	assert.Equal(t, "planning meeting", mock.query)
	assert.Equal(t, 10, mock.opts.TopK)
	assert.Equal(t, "gmail", mock.opts.Plugin)

	out := buf.String()
	assert.Contains(t, out, "[1] Quarterly planning (0.91)")
	assert.Contains(t, out, "gmail/email")
	assert.Contains(t, out, "[2] Recovery - 2026-03-01 (0.64)")
}

func TestRunSearch_JSON(t *testing.T) {
	searchService = &cliMockSearch{results: sampleResults()}
	defer func() { searchService = nil }()

	searchJSON = true
	defer func() { searchJSON = false }()

	cmd, buf := newTestCmd()
	require.NoError(t, runSearch(cmd, []string{"planning"}))

	out := buf.String()
	assert.Contains(t, out, `"plugin": "gmail"`)
	assert.Contains(t, out, `"source_id": "msg-1"`)
	assert.Contains(t, out, `"score": 0.91`)
}

func TestRunSearch_NoResults(t *testing.T) {
	searchService = &cliMockSearch{}
	defer func() { searchService = nil }()
	searchJSON = false

	cmd, buf := newTestCmd()
	require.NoError(t, runSearch(cmd, []string{"anything"}))
	assert.Contains(t, buf.String(), "No results found.")
}

func TestRunSearch_NotConfigured(t *testing.T) {
	searchService = nil

	cmd, _ := newTestCmd()
	err := runSearch(cmd, []string{"query"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestRunImport_PrintsRunSummaries(t *testing.T) {
	finished := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	mock := &cliMockImporter{runs: []domain.ImportRun{
		{
			PluginName:            "gmail",
			Status:                domain.RunSuccess,
			ItemsFetched:          12,
			ItemsInserted:         10,
			ItemsSkippedDuplicate: 2,
			FinishedAt:            &finished,
		},
		{
			PluginName:   "whoop",
			Status:       domain.RunFailed,
			ErrorSummary: "authentication required",
		},
	}}
	importerService = mock
	defer func() { importerService = nil }()

	cmd, buf := newTestCmd()
	require.NoError(t, runImport(cmd, []string{"gmail", "whoop"}))

	assert.Equal(t, []string{"gmail", "whoop"}, mock.rc.Plugins)
	assert.Equal(t, domain.TriggerManual, mock.rc.Trigger)

	out := buf.String()
	assert.Contains(t, out, "gmail: success")
	assert.Contains(t, out, "fetched 12, inserted 10, skipped 2 duplicates")
	assert.Contains(t, out, "whoop: failed")
	assert.Contains(t, out, "error: authentication required")
}

func TestRunRuns_Empty(t *testing.T) {
	importerService = &cliMockImporter{}
	defer func() { importerService = nil }()

	cmd, buf := newTestCmd()
	require.NoError(t, runRuns(cmd, nil))
	assert.Contains(t, buf.String(), "No runs recorded.")
}

func TestRunRuns_ListsLog(t *testing.T) {
	importerService = &cliMockImporter{runs: []domain.ImportRun{
		{
			PluginName:    "ticktick",
			StartedAt:     time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC),
			Status:        domain.RunPartial,
			ItemsInserted: 4,
			ErrorSummary:  "2 items failed validation",
		},
	}}
	defer func() { importerService = nil }()

	cmd, buf := newTestCmd()
	require.NoError(t, runRuns(cmd, []string{"ticktick"}))

	out := buf.String()
	assert.Contains(t, out, "2026-03-02 07:00:00")
	assert.Contains(t, out, "ticktick")
	assert.Contains(t, out, "partial")
	assert.Contains(t, out, "(2 items failed validation)")
}
