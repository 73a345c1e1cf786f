package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorHandler catches panics from later handlers and answers with a
// structured 500.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString("request_id")),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Code:    "internal",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, logger *zap.Logger, status int, resp ErrorResponse) {
	if status >= http.StatusInternalServerError {
		logger.Error(resp.Message, zap.String("code", resp.Code), zap.String("details", resp.Details), zap.String("error", resp.Error))
	} else {
		logger.Warn(resp.Message, zap.String("code", resp.Code), zap.String("details", resp.Details))
	}
	c.AbortWithStatusJSON(status, resp)
}
