// Package httpkit holds the gin helpers shared by every module: responses,
// error mapping, identity and middleware.
package httpkit

import (
	"errors"
	"net/http"

	"telemarketing_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// HandleError writes err and reports whether there was one. The first
// *apperr.Error in the chain picks the status; anything else is a 500
// carrying its message.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		Error(c, domainErr.HTTPStatus(), domainErr.Message, domainErr.Details)
		return true
	}

	Error(c, http.StatusInternalServerError, err.Error(), nil)
	return true
}
