package utils

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Response defines the standard API response envelope.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorInfo provides details for error responses.
type ErrorInfo struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// Meta contains request-scoped metadata.
type Meta struct {
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// Success writes a success response with the standard envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta:    newMeta(c),
	})
}

// Error writes an error response with provided API error code and message.
func Error(c *gin.Context, code int, errCode, message string) {
	writeError(c, code, &ErrorInfo{Code: errCode, Message: message})
}

// ValidationFailed writes a 400 naming every rejected field.
func ValidationFailed(c *gin.Context, verr *ValidationError) {
	writeError(c, http.StatusBadRequest, &ErrorInfo{
		Code:    "VALIDATION_FAILED",
		Message: verr.Error(),
		Fields:  verr.Fields,
	})
}

// RespondError maps a service error onto the error taxonomy. Unexpected
// errors are logged in full and reported to the caller generically.
func RespondError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		ValidationFailed(c, verr)
	case errors.Is(err, ErrInvalidCredentials):
		Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
	case errors.Is(err, ErrUnauthorized):
		Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
	case errors.Is(err, ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, ErrConflict):
		Error(c, http.StatusConflict, "CONFLICT", "Resource already exists")
	case errors.Is(err, ErrStorageUnavailable):
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("storage unavailable")
		Error(c, http.StatusInternalServerError, "STORAGE_UNAVAILABLE", "Internal server error")
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// ErrorWithData writes an error response that still carries a data payload.
func ErrorWithData(c *gin.Context, code int, errCode, message string, data interface{}) {
	c.JSON(code, Response{
		Success: false,
		Code:    code,
		Message: message,
		Data:    data,
		Error:   &ErrorInfo{Code: errCode, Message: message},
		Meta:    newMeta(c),
	})
}

func writeError(c *gin.Context, code int, info *ErrorInfo) {
	c.JSON(code, Response{
		Success: false,
		Code:    code,
		Message: info.Message,
		Error:   info,
		Meta:    newMeta(c),
	})
}

func newMeta(c *gin.Context) Meta {
	return Meta{
		RequestID: getRequestID(c),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return NewRequestID()
}

// NewRequestID returns a short random request identifier.
func NewRequestID() string {
	return uuid.New().String()[:8]
}
