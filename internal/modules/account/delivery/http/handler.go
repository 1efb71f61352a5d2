package handler

import (
	"errors"
	"net/http"

	"anoa.com/campushub/internal/middleware"
	"anoa.com/campushub/internal/modules/account/dto"
	account "anoa.com/campushub/internal/modules/account/service"
	"anoa.com/campushub/internal/session"
	"anoa.com/campushub/internal/web"
	"anoa.com/campushub/pkg/apperror"
	"anoa.com/campushub/pkg/ratelimiter"
	"anoa.com/campushub/pkg/response"
	"anoa.com/campushub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	service      account.AccountService
	sessions     *session.Manager
	loginLimiter *ratelimiter.Limiter
	cookieSecure bool
}

func NewAuthHandler(service account.AccountService, sessions *session.Manager, loginLimiter *ratelimiter.Limiter, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		service:      service,
		sessions:     sessions,
		loginLimiter: loginLimiter,
		cookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) Home(c *gin.Context) {
	if _, err := response.GetPrincipal(c); err == nil {
		c.Redirect(http.StatusFound, "/events")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", web.Page(c, gin.H{"Title": "Register"}))
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		web.Redirect(c, "/register", web.FlashError, validator.FormatValidationError(err))
		return
	}

	if _, err := h.service.Register(c.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, account.ErrEmailTaken):
			web.Redirect(c, "/register", web.FlashError, "Email already registered!")
		case errors.Is(err, account.ErrUsernameTaken):
			web.Redirect(c, "/register", web.FlashError, "Username already exists!")
		case errors.Is(err, apperror.ErrValidation):
			web.Redirect(c, "/register", web.FlashError, "All fields are required!")
		default:
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("registration failed")
			web.Redirect(c, "/register", web.FlashError, "Registration failed, please try again.")
		}
		return
	}

	web.Redirect(c, "/login", web.FlashSuccess, "Registration successful! Please login.")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", web.Page(c, gin.H{"Title": "Login"}))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		web.Redirect(c, "/login", web.FlashError, validator.FormatValidationError(err))
		return
	}

	ctx := c.Request.Context()
	limitKey := c.ClientIP() + ":" + req.Username
	if err := h.loginLimiter.Hit(ctx, limitKey); err != nil {
		var rlErr *ratelimiter.RateLimitError
		if errors.As(err, &rlErr) {
			web.Redirect(c, "/login", web.FlashError, "Too many login attempts. "+rlErr.Error())
			return
		}
		// throttling is advisory when redis misbehaves
		zerolog.Ctx(ctx).Warn().Err(err).Msg("login rate limit check failed")
	}

	acc, err := h.service.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCredentials) {
			web.Redirect(c, "/login", web.FlashError, "Invalid username or password!")
			return
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("login failed")
		web.Redirect(c, "/login", web.FlashError, "Login failed, please try again.")
		return
	}

	token, _, err := h.sessions.Issue(acc)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to issue session")
		web.Redirect(c, "/login", web.FlashError, "Login failed, please try again.")
		return
	}
	_ = h.loginLimiter.Reset(ctx, limitKey)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(h.sessions.TTL().Seconds()), "/", "", h.cookieSecure, true)
	web.Redirect(c, "/", web.FlashSuccess, "Login successful!")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if claims := middleware.SessionClaims(c); claims != nil {
		if err := h.sessions.Revoke(c.Request.Context(), claims); err != nil {
			zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("failed to revoke session")
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", h.cookieSecure, true)
	web.Redirect(c, "/login", web.FlashInfo, "You have been logged out!")
}
