package response

import (
	"net/http"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PrincipalKey is the gin context key holding the resolved *entity.Account.
const PrincipalKey = "principal"

// GetPrincipal retrieves the authenticated account from the context
func GetPrincipal(c *gin.Context) (*entity.Account, error) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, apperror.ErrUnauthenticated
	}

	account, ok := value.(*entity.Account)
	if !ok || account == nil {
		return nil, apperror.ErrUnauthenticated
	}

	return account, nil
}

// ResponseError standardized flat error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	logger := zerolog.Ctx(c.Request.Context())
	// Log internal errors
	if code == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
	} else {
		logger.Debug().Err(err).Int("status", code).Str("path", c.Request.URL.Path).Msg("request failed")
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
