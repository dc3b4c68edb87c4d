package middleware

import (
	"net/http"
	"strings"

	"chatterbox/pkg/response"

	"github.com/gin-gonic/gin"
)

// TokenValidator checks a bearer token and returns the user id it
// carries; satisfied by the auth service.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth rejects requests without a valid bearer token and sets
// user_id in the gin context for downstream handlers.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "authorization header is required")
			c.Abort()
			return
		}

		userID, err := am.tokens.ValidateToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// bearerToken pulls the token from the Authorization header, falling
// back to a query parameter for websocket upgrades where browsers
// cannot set headers.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
