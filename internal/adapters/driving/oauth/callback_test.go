package oauth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callbackRequest(t *testing.T, s *CallbackServer, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/callback?"+query, http.NoBody)
	rec := httptest.NewRecorder()
	s.handleCallback(rec, req)
	return rec
}

func TestHandleCallback_Success(t *testing.T) {
	s := NewCallbackServer(0, "state-1")

	rec := callbackRequest(t, s, "code=auth-code&state=state-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization successful")

	code, err := s.WaitForCode(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "auth-code", code)
}

func TestHandleCallback_StateMismatch(t *testing.T) {
	s := NewCallbackServer(0, "expected")

	callbackRequest(t, s, "code=auth-code&state=wrong")

	_, err := s.WaitForCode(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestHandleCallback_MissingCode(t *testing.T) {
	s := NewCallbackServer(0, "state-1")

	callbackRequest(t, s, "state=state-1")

	_, err := s.WaitForCode(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no authorization code")
}

func TestHandleCallback_ProviderError(t *testing.T) {
	s := NewCallbackServer(0, "state-1")

	callbackRequest(t, s, "error=access_denied&error_description=denied")

	_, err := s.WaitForCode(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestHandleCallback_RepeatedErrorsDoNotBlock(t *testing.T) {
	s := NewCallbackServer(0, "expected")

	// Every failing request must finish; only the first error is kept.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			rec := callbackRequest(t, s, fmt.Sprintf("code=c-%d&state=wrong-%d", i, i))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback handler blocked on a repeated error")
	}

	_, err := s.WaitForCode(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestWaitForCode_Timeout(t *testing.T) {
	s := NewCallbackServer(0, "state-1")

	_, err := s.WaitForCode(50 * time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestStartAndStop(t *testing.T) {
	s := NewCallbackServer(0, "state-1")

	require.NoError(t, s.Start())
	assert.NotZero(t, s.Port(), "port 0 binds a random port")
	assert.Contains(t, s.RedirectURI(), "/callback")

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}
