package endpoints

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleStatus(t *testing.T) {
	handler := handleStatus()

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHandleHealth(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		health := &MockHealthStore{}
		health.On("CheckConnectivity").Return(nil)

		w := httptest.NewRecorder()
		handleHealth(health)(w, httptest.NewRequest("GET", "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		health.AssertExpectations(t)
	})

	t.Run("database unreachable", func(t *testing.T) {
		health := &MockHealthStore{}
		health.On("CheckConnectivity").Return(errors.New("connection refused"))

		w := httptest.NewRecorder()
		handleHealth(health)(w, httptest.NewRequest("GET", "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "database connectivity check failed")
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t)
	ts.health.On("CheckConnectivity").Return(nil)

	w := ts.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
