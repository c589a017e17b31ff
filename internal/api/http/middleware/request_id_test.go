package middleware

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRIDRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		seen = GetRequestID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"rid": c.GetString("request_id")})
	})
	return r, &seen
}

func TestRequestIDGenerated(t *testing.T) {
	r, seen := newRIDRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	rid := w.Header().Get("X-Request-Id")
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), rid)
	assert.Equal(t, rid, *seen, "handler should see the same id through the request context")
}

func TestRequestIDPropagated(t *testing.T) {
	r, seen := newRIDRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "client-supplied-id")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "client-supplied-id", w.Header().Get("X-Request-Id"))
	assert.Equal(t, "client-supplied-id", *seen)
}

func TestGetRequestIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	assert.Empty(t, GetRequestID(req.Context()))
}
