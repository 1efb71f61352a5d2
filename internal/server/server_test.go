package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anoa.com/campushub/internal/middleware"
	"anoa.com/campushub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	accountHttp "anoa.com/campushub/internal/modules/account/delivery/http"
	accountService "anoa.com/campushub/internal/modules/account/service"
)

func newTestRouter(health func(context.Context) error) *gin.Engine {
	gin.SetMode(gin.TestMode)

	sessions := session.NewManager("test-secret", time.Hour, nil)
	accounts := accountService.NewAccountService(nil)

	return newRouter(routerConfig{
		logger:         zerolog.Nop(),
		gate:           middleware.NewSessionGate(sessions, accounts),
		metrics:        middleware.NewMetrics(),
		allowedOrigins: "*",
		health:         health,
	}, handlers{
		auth: accountHttp.NewAuthHandler(accounts, sessions, nil, false),
	})
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	ok := newTestRouter(func(context.Context) error { return nil })
	assert.Equal(t, http.StatusOK, serve(ok, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)

	down := newTestRouter(func(context.Context) error { return errors.New("connection refused") })
	assert.Equal(t, http.StatusServiceUnavailable, serve(down, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestAnonymousPagesRedirectToLogin(t *testing.T) {
	r := newTestRouter(func(context.Context) error { return nil })

	for _, path := range []string{"/", "/events", "/courses/1", "/resources/1/download"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
}

func TestLoginPageRenders(t *testing.T) {
	r := newTestRouter(func(context.Context) error { return nil })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/login"`)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(func(context.Context) error { return nil })
	serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "go_goroutines"))
}

func TestCORSPreflightOnAPI(t *testing.T) {
	r := newTestRouter(func(context.Context) error { return nil })

	req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMeiliHost(t *testing.T) {
	assert.Equal(t, "", meiliHost("  "))
	assert.Equal(t, "http://meili:7700", meiliHost("meili"))
	assert.Equal(t, "https://search.example.com", meiliHost("https://search.example.com"))
}
