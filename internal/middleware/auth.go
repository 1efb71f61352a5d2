package middleware

import (
	"context"
	"net/http"
	"strings"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/internal/session"
	"anoa.com/campushub/pkg/apperror"
	"anoa.com/campushub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PrincipalFinder loads the account a session belongs to.
type PrincipalFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
}

type SessionGate struct {
	sessions *session.Manager
	accounts PrincipalFinder
}

func NewSessionGate(sessions *session.Manager, accounts PrincipalFinder) *SessionGate {
	return &SessionGate{
		sessions: sessions,
		accounts: accounts,
	}
}

// LoadPrincipal resolves the session cookie into an account. A missing or
// stale session leaves the request anonymous.
func (g *SessionGate) LoadPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		claims, err := g.sessions.Resolve(ctx, token)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("discarding session cookie")
			c.Next()
			return
		}

		accountID, err := claims.AccountID()
		if err != nil {
			c.Next()
			return
		}

		account, err := g.accounts.FindByID(ctx, accountID)
		if err != nil {
			c.Next()
			return
		}

		c.Set(response.PrincipalKey, account)
		c.Set(sessionClaimsKey, claims)
		c.Next()
	}
}

// RequirePrincipal rejects anonymous requests: JSON callers get a 401 body,
// page callers are redirected to the login page.
func (g *SessionGate) RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := response.GetPrincipal(c); err == nil {
			c.Next()
			return
		}

		if WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperror.ErrUnauthenticated.Error()})
			return
		}

		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

const sessionClaimsKey = "session_claims"

// SessionClaims returns the claims of the resolved session, if any.
func SessionClaims(c *gin.Context) *session.Claims {
	if v, ok := c.Get(sessionClaimsKey); ok {
		if claims, ok := v.(*session.Claims); ok {
			return claims
		}
	}
	return nil
}

func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Content-Type"), gin.MIMEJSON) ||
		strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}
