package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz(t *testing.T) {
	c := NewHealthController("v1.2.3", nil)
	rr := httptest.NewRecorder()
	c.Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","version":"v1.2.3"}`, rr.Body.String())
}

func TestReadyz(t *testing.T) {
	okCheck := func(context.Context) error { return nil }
	c := NewHealthController("", map[string]Check{"store": okCheck, "cache": okCheck})

	rr := httptest.NewRecorder()
	c.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	c = NewHealthController("", map[string]Check{
		"store": okCheck,
		"cache": func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	rr = httptest.NewRecorder()
	c.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, map[string]string{"store": "ok", "cache": "error"}, body.Checks)
	assert.NotContains(t, rr.Body.String(), "refused")
}
