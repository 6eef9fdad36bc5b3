package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"stockops-backend/internal/shared/response"
)

// Recovery converts panics into a 500 envelope instead of killing the worker.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString("request_id")).
					Msg("panic recovered")

				response.InternalError(c, "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
