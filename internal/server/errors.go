package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentlogdomain "github.com/smallbiznis/paymentslog/internal/paymentlog/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, internalErrorPayload()
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var recordErr *paymentlogdomain.ValidationError
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, paymentlogdomain.ErrInvalidOrderID),
		errors.Is(err, paymentlogdomain.ErrInvalidRefundID):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "id", Code: "invalid_id", Message: "id must be a positive integer"},
			},
		}
	case errors.As(err, &recordErr):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invalid_record",
			Message: "payment event rejected",
			Errors: []ValidationError{
				{Field: recordErr.Field, Code: "invalid_" + recordErr.Field, Message: recordErr.Reason},
			},
		}
	case errors.Is(err, paymentlogdomain.ErrInvalidRecord):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invalid_record",
			Message: "payment event rejected",
		}
	case errors.Is(err, paymentlogdomain.ErrHookFailed):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "rejected",
			Message: "payment event rejected by hook",
		}
	default:
		return http.StatusInternalServerError, internalErrorPayload()
	}
}

func internalErrorPayload() errorPayload {
	return errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

// classifyErrorForLog returns the error type and code logged with a failed request.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	switch {
	case errors.Is(err, paymentlogdomain.ErrPersistFailed):
		return payload.Type, paymentlogdomain.ErrPersistFailed.Error()
	case errors.Is(err, paymentlogdomain.ErrListFailed):
		return payload.Type, paymentlogdomain.ErrListFailed.Error()
	case errors.Is(err, paymentlogdomain.ErrOrderLookup):
		return payload.Type, paymentlogdomain.ErrOrderLookup.Error()
	}
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}
