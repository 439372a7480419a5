package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a record with the same dedup key already exists.
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownPlugin indicates an unregistered plugin name.
	ErrUnknownPlugin = errors.New("unknown plugin")

	// ErrPluginDisabled indicates the plugin's enabled flag is off.
	ErrPluginDisabled = errors.New("plugin disabled")

	// ErrImportInProgress indicates an import is already running for the plugin.
	ErrImportInProgress = errors.New("import in progress")

	// Transient I/O errors: retried with bounded backoff.

	// ErrTransient indicates a retryable network condition such as a timeout.
	ErrTransient = errors.New("transient error")

	// ErrRateLimited indicates the upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Authentication errors: never retried within a run.

	// ErrAuthRequired indicates the plugin requires authentication but none
	// is configured. Fetch fails fast without attempting network I/O.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the token expired and the refresh attempt
	// failed; the caller must re-authorise.
	ErrAuthExpired = errors.New("authentication expired, refresh failed")

	// ErrTokenRefreshFailed indicates the refresh-token exchange failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Other classes.

	// ErrValidation indicates a malformed plugin config or record; the
	// offending item is skipped and the run continues.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence indicates the store is unavailable; the current
	// plugin's run aborts without affecting sibling plugins.
	ErrPersistence = errors.New("persistence failed")

	// ErrEmbeddingProvider indicates the embedding provider call failed;
	// affected records stay unembedded for a later backfill.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrEmbeddingUnavailable indicates no embedding service is configured;
	// semantic search is disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// IsTransient reports whether an error is in the retryable class.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited)
}

// IsAuthError reports whether an error requires re-authorisation and must
// not be retried within a run.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthRequired) ||
		errors.Is(err, ErrAuthExpired) ||
		errors.Is(err, ErrTokenRefreshFailed)
}
