package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performCORS(t *testing.T, origins []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, "/api/v1/students", nil)
	if origin != "" {
		c.Request.Header.Set("Origin", origin)
	}
	New(origins)(c)
	return rec
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	rec := performCORS(t, []string{"https://app.edulane.io"}, http.MethodGet, "https://app.edulane.io")
	assert.Equal(t, "https://app.edulane.io", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSSkipsUnlistedOrigin(t *testing.T) {
	rec := performCORS(t, []string{"https://app.edulane.io"}, http.MethodGet, "https://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSEmptyListAllowsAll(t *testing.T) {
	rec := performCORS(t, nil, http.MethodGet, "https://anywhere.example")
	assert.Equal(t, "https://anywhere.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	rec := performCORS(t, nil, http.MethodOptions, "https://anywhere.example")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
