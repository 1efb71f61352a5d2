package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

const csrfFailureMessage = "CSRF token validation failed"

// CSRF protects the cookie-authenticated form routes with gorilla/csrf's
// double-submit token. An empty key disables protection.
func CSRF(authKey []byte, secure bool) gin.HandlerFunc {
	if len(authKey) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	protect := csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(csrfFailureMessage))
		})),
	)

	return func(c *gin.Context) {
		passed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})

		req := c.Request
		if !secure {
			req = csrf.PlaintextHTTPRequest(req)
		}
		protect(next).ServeHTTP(c.Writer, req)

		if !passed {
			c.Abort()
		}
	}
}

// CSRFToken returns the token to embed in forms, or "" when protection is off.
func CSRFToken(c *gin.Context) string {
	return csrf.Token(c.Request)
}

func CSRFFieldName() string {
	return "gorilla.csrf.Token"
}
