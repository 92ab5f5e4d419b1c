package middleware

import (
	"github.com/gin-gonic/gin"

	"fintrack/internal/response"
)

// ErrorHandler renders errors that handlers attached with c.Error instead of
// writing a response themselves. The last attached error wins; anything
// already written is left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		if last := c.Errors.Last(); last != nil {
			response.Error(c, last.Err)
		}
	}
}
