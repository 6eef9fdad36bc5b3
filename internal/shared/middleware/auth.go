package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stockops-backend/internal/shared/response"
	"stockops-backend/pkg/jwt"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Auth verifies the bearer token and stores the actor identity on the
// context. Write endpoints record it as performed_by / reserved_by.
func Auth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "AUTH_001", "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "AUTH_002", "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := manager.Verify(parts[1])
		if err != nil {
			response.Unauthorized(c, "AUTH_003", "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// ActorID returns the authenticated actor's id from the gin context.
func ActorID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
