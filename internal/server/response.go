package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/trades"
	"github.com/pgEdge/pgedge-trades/internal/view"
)

// Response represents a standardized API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents an error response
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// handleError maps a view error to a status code.
func handleError(c *gin.Context, err error) {
	switch {
	case trades.IsNoData(err):
		notFound(c, err.Error())
	case errors.Is(err, view.ErrClientRequired),
		errors.Is(err, view.ErrDateRequired),
		errors.Is(err, view.ErrUnknownMode):
		badRequest(c, err.Error())
	default:
		internalError(c, err)
	}
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Success: false,
		Error: &Error{
			Code:    ErrCodeNotFound,
			Message: message,
		},
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error: &Error{
			Code:    ErrCodeBadRequest,
			Message: message,
		},
	})
}

func internalError(c *gin.Context, err error) {
	logging.Error().
		Err(err).
		Str("component", "server").
		Str("path", c.FullPath()).
		Msg("Request failed")
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error: &Error{
			Code:    ErrCodeInternalError,
			Message: "An unexpected error occurred",
		},
	})
}
