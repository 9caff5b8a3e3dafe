package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func setupRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/", handlers...)
	return router
}

func request(router *gin.Engine, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestAllowNetworks(t *testing.T) {
	allow, err := AllowNetworks([]string{"127.0.0.0/8", "::1/128", " 192.168.0.0/16 ", ""})
	require.NoError(t, err)
	router := setupRouter(allow)

	assert.Equal(t, http.StatusNoContent, request(router, "127.0.0.1:1234"))
	assert.Equal(t, http.StatusNoContent, request(router, "[::1]:1234"))
	assert.Equal(t, http.StatusNoContent, request(router, "192.168.10.20:1234"))
	assert.Equal(t, http.StatusForbidden, request(router, "203.0.113.9:1234"))
}

func TestAllowNetworksEmptyAllowsAll(t *testing.T) {
	allow, err := AllowNetworks(nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, request(setupRouter(allow), "203.0.113.9:1234"))
}

func TestAllowNetworksInvalid(t *testing.T) {
	_, err := AllowNetworks([]string{"localhost"})
	assert.Error(t, err)
}

func TestRateLimit(t *testing.T) {
	router := setupRouter(RateLimit(rate.NewLimiter(rate.Every(1<<62), 1)))

	assert.Equal(t, http.StatusNoContent, request(router, "127.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, request(router, "127.0.0.1:1"))

	assert.Equal(t, http.StatusNoContent, request(setupRouter(RateLimit(nil)), "127.0.0.1:1"))
}

func TestOptionalBasicAuth(t *testing.T) {
	assert.Equal(t, http.StatusNoContent, request(setupRouter(OptionalBasicAuth("", "")), "127.0.0.1:1"))
	assert.Equal(t, http.StatusUnauthorized, request(setupRouter(OptionalBasicAuth("admin", "pw")), "127.0.0.1:1"))
}
