// file: internal/server/error_handler.go
// version: 1.0.0
// guid: 4c09e76b-b276-4191-8f41-0f5f62cdd708

package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/calibre-api/internal/calibre"
)

// ErrorResponse provides a consistent error response format
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Status int    `json:"status"`
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
}

// RespondWithError sends a standardized error response and logs the error
func RespondWithError(c *gin.Context, statusCode int, message string, code string) {
	logErrorWithContext(c, statusCode, message)

	c.JSON(statusCode, ErrorResponse{
		Error:  message,
		Code:   code,
		Status: statusCode,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error response
func RespondWithBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, message, "BAD_REQUEST")
}

// RespondWithNotFound sends a 404 Not Found error response
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, message, "NOT_FOUND")
}

// RespondWithInternalError sends a 500 Internal Server Error response
func RespondWithInternalError(c *gin.Context, message string) {
	RespondWithError(c, http.StatusInternalServerError, message, "INTERNAL_ERROR")
}

// RespondWithToolUnavailable sends a 503 for a missing Calibre executable
func RespondWithToolUnavailable(c *gin.Context, message string) {
	RespondWithError(c, http.StatusServiceUnavailable, message, "CALIBRE_UNAVAILABLE")
}

// RespondWithCalibreError maps an adapter error onto the HTTP taxonomy:
// missing binary 503, rejected input 400, tool or parse failure 500.
// Tool failures carry the captured stdout/stderr so clients see the
// tool's own diagnostics.
func RespondWithCalibreError(c *gin.Context, err error) {
	var notFound *calibre.BinaryNotFoundError
	var input *calibre.InputError
	var tool *calibre.ToolError

	switch {
	case errors.As(err, &notFound):
		RespondWithToolUnavailable(c, notFound.Error())
	case errors.As(err, &input):
		RespondWithBadRequest(c, input.Error())
	case errors.As(err, &tool):
		logErrorWithContext(c, http.StatusInternalServerError, tool.Message)
		code := "CALIBRE_TOOL_FAILED"
		if tool.Timeout() {
			code = "CALIBRE_TOOL_TIMEOUT"
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:  tool.Message,
			Code:   code,
			Status: http.StatusInternalServerError,
			Stdout: tool.Stdout,
			Stderr: tool.Stderr,
		})
	default:
		RespondWithInternalError(c, err.Error())
	}
}

// logErrorWithContext logs an error with request context for debugging
func logErrorWithContext(c *gin.Context, statusCode int, message string) {
	method := c.Request.Method
	path := c.Request.URL.Path
	clientIP := c.ClientIP()

	logLevel := "WARN"
	if statusCode >= 500 {
		logLevel = "ERROR"
	}

	log.Printf("[%s] %s %s %d - %s (from %s)", logLevel, method, path, statusCode, message, clientIP)
}

// HandleBindError handles JSON binding errors with a consistent response
func HandleBindError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "required") || strings.Contains(errMsg, "binding") {
		RespondWithError(c, http.StatusBadRequest, "validation error: "+errMsg, "VALIDATION_ERROR")
	} else {
		RespondWithBadRequest(c, "invalid request: "+errMsg)
	}
	return true
}
