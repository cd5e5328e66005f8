package utils

import (
	"github.com/gin-gonic/gin"
)

// APIResponse is the common envelope for every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Message: message,
	})
}

// ErrorResponseWithCode includes the application error code so clients can
// distinguish "try again" conditions from invalid requests.
func ErrorResponseWithCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Code:    code,
		Message: message,
	})
}
