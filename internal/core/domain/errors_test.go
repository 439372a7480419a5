package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(ErrTransient))
	assert.True(t, IsTransient(ErrRateLimited))
	assert.True(t, IsTransient(fmt.Errorf("fetch: %w", ErrTransient)))
	assert.False(t, IsTransient(ErrAuthRequired))
	assert.False(t, IsTransient(errors.New("boom")))
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(ErrAuthRequired))
	assert.True(t, IsAuthError(ErrAuthExpired))
	assert.True(t, IsAuthError(fmt.Errorf("refresh: %w", ErrTokenRefreshFailed)))
	assert.False(t, IsAuthError(ErrTransient))
	assert.False(t, IsAuthError(nil))
}
