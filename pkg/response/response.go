package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the JSON envelope every handler returns.
type Body struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Status: "success", Message: message, Data: data})
}

// Fail writes an error envelope with the given HTTP status.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Body{Status: "error", Message: message})
}

// BadRequest is a shortcut for validation failures.
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

// ServerError is a shortcut for internal failures.
func ServerError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message)
}
