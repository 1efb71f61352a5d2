package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/internal/modules/account/dto"
	account "anoa.com/campushub/internal/modules/account/service"
	"anoa.com/campushub/internal/session"
	"anoa.com/campushub/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountService struct {
	account.AccountService
	registered []dto.RegisterRequest
	alice      *entity.Account
}

func (f *fakeAccountService) Register(_ context.Context, req dto.RegisterRequest) (*entity.Account, error) {
	if req.Username == f.alice.Username {
		return nil, account.ErrUsernameTaken
	}
	if req.Email == f.alice.Email {
		return nil, account.ErrEmailTaken
	}
	f.registered = append(f.registered, req)
	return &entity.Account{ID: uuid.New(), Username: req.Username, Email: req.Email}, nil
}

func (f *fakeAccountService) Authenticate(_ context.Context, username, password string) (*entity.Account, error) {
	if username == f.alice.Username && password == "pw" {
		return f.alice, nil
	}
	return nil, apperror.ErrInvalidCredentials
}

func newAuthRouter() (*gin.Engine, *fakeAccountService) {
	gin.SetMode(gin.TestMode)
	svc := &fakeAccountService{alice: &entity.Account{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}}
	h := NewAuthHandler(svc, session.NewManager("secret", time.Hour, nil), nil, false)

	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	return r, svc
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegisterRedirectsToLogin(t *testing.T) {
	r, svc := newAuthRouter()

	w := postForm(r, "/register", url.Values{"username": {"bob"}, "email": {"bob@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Len(t, svc.registered, 1)
}

func TestRegisterDuplicateUsernameReturnsToForm(t *testing.T) {
	r, svc := newAuthRouter()

	w := postForm(r, "/register", url.Values{"username": {"alice"}, "email": {"new@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/register", w.Header().Get("Location"))
	assert.NotNil(t, cookieNamed(w, "campushub_flash"))
	assert.Empty(t, svc.registered)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	r, _ := newAuthRouter()

	w := postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"pw"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookie := cookieNamed(w, session.CookieName)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestLoginWithBadPasswordRedirectsBack(t *testing.T) {
	r, _ := newAuthRouter()

	w := postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Nil(t, cookieNamed(w, session.CookieName))
}

func TestLogoutClearsCookie(t *testing.T) {
	r, _ := newAuthRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logout", nil))
	assert.Equal(t, "/login", w.Header().Get("Location"))

	cookie := cookieNamed(w, session.CookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.MaxAge < 0)
}
