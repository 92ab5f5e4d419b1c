// Package response writes the JSON envelope shared by every API endpoint:
// {success, message, data} on success and {success:false, message, code} on failure.
package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
}

// OK writes a success envelope.
func OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope. AppErrors keep their status, code and
// message; their internal cause is logged and never returned. Any other
// error is logged and reported as an internal server error.
func Error(c *gin.Context, err error) {
	status, body := resolve(c, err)
	c.JSON(status, body)
}

// Abort is Error followed by aborting the handler chain.
func Abort(c *gin.Context, err error) {
	status, body := resolve(c, err)
	c.AbortWithStatusJSON(status, body)
}

func resolve(c *gin.Context, err error) (int, Envelope) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		return appErr.StatusCode, Envelope{Message: appErr.Message, Code: appErr.Code}
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	return apperrors.ErrInternalServer.StatusCode, Envelope{
		Message: apperrors.ErrInternalServer.Message,
		Code:    apperrors.ErrInternalServer.Code,
	}
}
