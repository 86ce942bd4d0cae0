// internal/pkg/response/response.go
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
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

// Error sends a standardized error response and aborts the handler chain.
// Only the message is sent to the client; the underlying error stays in the
// server logs.
func Error(c *gin.Context, code int, message string) {
	c.Abort()
	c.JSON(code, Response{
		Success: false,
		Message: message,
	})
}

// Unauthorized sends the uniform 401 response. Every authentication failure
// uses the same message regardless of cause.
func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "not authenticated")
}

// RateLimited sends a 429 so clients know to back off.
func RateLimited(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, "too many attempts, please try again later")
}

// ServerError sends the generic 500 response.
func ServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "something went wrong, please try again")
}
