package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/gin-gonic/gin"
)

// writeError maps a service error onto a status and a client-safe message.
func writeError(c *gin.Context, log logging.Logger, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(c.Request.Context(), "request failed",
			"path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey), "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func statusFor(err error) (int, string) {
	var ve *common.ValidationError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, common.ErrDuplicateIdentity):
		return http.StatusBadRequest, "Email or phone number already exists"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid token"
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "File too large"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}
