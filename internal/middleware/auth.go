package middleware

import (
	"net/http"
	"strings"

	"adservice/internal/pkg/jwt"
	"adservice/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ContextSubject = "subject"
	ContextRole    = "role"
)

// JWTAuth validates a bearer token and stores its subject and role in the gin context.
// The token may also be passed as ?token= for websocket upgrades.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			response.Abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}
