package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDKey = "request_id"

// NewRequestID returns a random request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// RequestID returns the id set by the RequestID middleware, if any.
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
