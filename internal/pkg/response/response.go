// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"

	xerrors "github.com/basharmd94/orderapp-sub000/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	c.Abort()

	response := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	if len(data) > 0 {
		response.Data = data[0]
	}

	c.JSON(code, response)
}

// FromError maps an application sentinel error to the matching HTTP status.
// Unexpected errors are masked behind a generic 500 so internal detail never
// reaches the caller.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, xerrors.ErrUnauthorized), errors.Is(err, xerrors.ErrInvalidToken):
		Error(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, xerrors.ErrLocked), errors.Is(err, xerrors.ErrForbidden):
		Error(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, xerrors.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", err)
	case errors.Is(err, xerrors.ErrConflict):
		Error(c, http.StatusConflict, "conflict", err)
	case errors.Is(err, xerrors.ErrInvalidInput):
		Error(c, http.StatusBadRequest, "invalid request", err)
	default:
		Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
