package domain

import "time"

// RunStatus is the final state of an import run.
type RunStatus string

const (
	// RunRunning marks a run that has started but not finished.
	RunRunning RunStatus = "running"
	// RunSuccess marks a run that completed with no errors.
	RunSuccess RunStatus = "success"
	// RunPartial marks a run where some items failed but others succeeded.
	RunPartial RunStatus = "partial"
	// RunFailed marks a run where the plugin could not be invoked at all
	// or produced no usable items due to an error.
	RunFailed RunStatus = "failed"
)

// ImportRun is one logged ingestion execution for one plugin.
// Created when the orchestrator starts a plugin's import, finalised exactly
// once when it ends. A run found without FinishedAt after a restart was
// abandoned mid-flight and is treated as failed, never resumed.
type ImportRun struct {
	// ID is the unique identifier (UUID).
	ID string

	// PluginName identifies the plugin this run imported from.
	PluginName string

	// StartedAt is when the run was opened.
	StartedAt time.Time

	// FinishedAt is when the run was finalised. Nil while running.
	FinishedAt *time.Time

	// Status is the run outcome.
	Status RunStatus

	// ItemsFetched counts items produced by the plugin's fetch.
	ItemsFetched int

	// ItemsInserted counts newly persisted records.
	ItemsInserted int

	// ItemsSkippedDuplicate counts items whose dedup key already existed.
	ItemsSkippedDuplicate int

	// ErrorSummary is a human-readable description of what went wrong.
	// Empty on success.
	ErrorSummary string
}

// Finished reports whether the run has been finalised.
func (r *ImportRun) Finished() bool {
	return r.FinishedAt != nil
}

// Finish finalises the run at the given time with a status derived from
// the accumulated counts and error summary.
func (r *ImportRun) Finish(at time.Time, itemErrors int, errSummary string) {
	t := at
	r.FinishedAt = &t
	r.ErrorSummary = errSummary

	switch {
	case errSummary == "" && itemErrors == 0:
		r.Status = RunSuccess
	case r.ItemsInserted > 0 || r.ItemsSkippedDuplicate > 0:
		r.Status = RunPartial
	default:
		r.Status = RunFailed
	}
}

// TriggerReason records why an import was invoked.
type TriggerReason string

const (
	// TriggerManual is an on-demand invocation by a caller.
	TriggerManual TriggerReason = "manual"
	// TriggerScheduled is a wall-clock scheduler invocation.
	TriggerScheduled TriggerReason = "scheduled"
	// TriggerWatch is a filesystem watch event invocation.
	TriggerWatch TriggerReason = "watch"
)

// RunContext carries the explicit invocation parameters for an orchestrated
// import, instead of ambient process state.
type RunContext struct {
	// Plugins is the target plugin set. Empty means all enabled plugins.
	Plugins []string

	// InvokedAt is the invocation time, used as the basis for since-hints.
	InvokedAt time.Time

	// Trigger records why the run was started.
	Trigger TriggerReason
}
