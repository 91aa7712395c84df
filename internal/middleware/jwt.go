package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"slotwise/internal/domain"
	"slotwise/internal/pkg/jwt"
	"slotwise/internal/pkg/response"
)

// JWTAuth validates the bearer token and stores user_id, organization_id and role on the context.
func JWTAuth(j *jwt.Service) gin.HandlerFunc {
	return authenticate(j, false)
}

// JWTAuthWithQuery also accepts ?token= for clients that cannot set headers (browser websockets).
func JWTAuthWithQuery(j *jwt.Service) gin.HandlerFunc {
	return authenticate(j, true)
}

func authenticate(j *jwt.Service, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, msg := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" && allowQuery {
			tokenStr = strings.TrimSpace(c.Query("token"))
		}
		if tokenStr == "" {
			if msg == "" {
				msg = "Missing Authorization header"
			}
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", msg)
			return
		}

		claims, err := j.ValidateToken(tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("organization_id", claims.OrganizationID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func bearerToken(header string) (string, string) {
	if header == "" {
		return "", ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", "Invalid Authorization header"
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", "Empty token"
	}
	return token, ""
}

func UserID(c *gin.Context) int64 { return c.GetInt64("user_id") }

func OrganizationID(c *gin.Context) int64 { return c.GetInt64("organization_id") }

func Role(c *gin.Context) string { return c.GetString("role") }

func Actor(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID:         UserID(c),
		OrganizationID: OrganizationID(c),
		Role:           domain.UserRole(Role(c)),
	}
}
