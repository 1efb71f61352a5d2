package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/internal/session"
	"anoa.com/campushub/pkg/apperror"
	"anoa.com/campushub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	accounts map[uuid.UUID]*entity.Account
}

func (f *fakeFinder) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, apperror.ErrNotFound
}

func newGateRouter(t *testing.T) (*gin.Engine, *session.Manager, *entity.Account) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	account := &entity.Account{ID: uuid.New(), Username: "alice"}
	sessions := session.NewManager("secret", time.Hour, nil)
	gate := NewSessionGate(sessions, &fakeFinder{accounts: map[uuid.UUID]*entity.Account{account.ID: account}})

	r := gin.New()
	r.Use(gate.LoadPrincipal())
	r.GET("/events", gate.RequirePrincipal(), func(c *gin.Context) {
		principal, err := response.GetPrincipal(c)
		require.NoError(t, err)
		c.String(http.StatusOK, principal.Username)
	})
	return r, sessions, account
}

func TestRequirePrincipalRedirectsPageCallers(t *testing.T) {
	r, _, _ := newGateRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequirePrincipalRejectsJSONCallers(t *testing.T) {
	r, _, _ := newGateRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String())
}

func TestLoadPrincipalFromCookie(t *testing.T) {
	r, sessions, account := newGateRouter(t)

	token, _, err := sessions.Issue(account)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestLoadPrincipalIgnoresUnknownAccount(t *testing.T) {
	r, sessions, _ := newGateRouter(t)

	token, _, err := sessions.Issue(&entity.Account{ID: uuid.New()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
}
