package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/response"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID parses a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id.String(), nil
}

// bindError converts a binding failure into a validation error.
func bindError(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

func respondWithError(c *gin.Context, err error) {
	response.Error(c, err)
}

// ErrorResponse documents the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// MessageResponse documents a success envelope without data.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}
