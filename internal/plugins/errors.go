package plugins

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// ClassifyStatus maps an HTTP response status onto the domain error
// taxonomy so the orchestrator's retry policy applies uniformly across
// sources: 429 and 5xx are retryable, 401/403 require re-authorisation.
func ClassifyStatus(status int, detail string) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", domain.ErrAuthExpired, status, detail)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %s", domain.ErrRateLimited, status, detail)
	case status >= 500:
		return fmt.Errorf("%w: status %d: %s", domain.ErrTransient, status, detail)
	default:
		return fmt.Errorf("unexpected status %d: %s", status, detail)
	}
}

// ClassifyGoogleError converts a Google API client error into the
// domain error taxonomy. Non-API errors (network failures, timeouts)
// are treated as transient.
func ClassifyGoogleError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	return ClassifyStatus(gerr.Code, gerr.Message)
}
