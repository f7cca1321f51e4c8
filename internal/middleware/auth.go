package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/omniclinic/clinic-api/internal/tenant"
	"github.com/omniclinic/clinic-api/pkg/auth"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate verifies the bearer token and stores the caller's identity in
// both the gin context and the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}

		claims, err := m.jwt.ValidateToken(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Request = c.Request.WithContext(tenant.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}
