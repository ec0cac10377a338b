package utils

import (
	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse writes a failure envelope. err is shown to the caller, so
// pass nil for internal failures.
func ErrorResponse(c *gin.Context, code int, message string, err error) {
	response := APIResponse{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(code, response)
}

// ErrorResponseWithData is ErrorResponse carrying a partial result.
func ErrorResponseWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Success: false,
		Message: message,
		Data:    data,
	})
}
