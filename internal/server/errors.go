package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/keyword-ranker/internal/schemas"
)

// maxBodyBytes bounds request bodies on every POST route
const maxBodyBytes = 1 << 20

// ErrBodyTooLarge indicates the request body exceeded maxBodyBytes
type ErrBodyTooLarge struct {
	Limit int64
}

func (e *ErrBodyTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// ErrInvalidBody marks a validation failure on a route that answers 400 Bad Request
type ErrInvalidBody struct {
	Err *schemas.ValidationError
}

func (e *ErrInvalidBody) Error() string {
	return "invalid JSON body: " + e.Err.Error()
}

func (e *ErrInvalidBody) Unwrap() error {
	return e.Err
}

// Error codes written in the "error" field of error responses
const (
	codeValidationFailed = "validation_failed"
	codeInvalidBody      = "invalid_body"
	codeBodyTooLarge     = "body_too_large"
	codeRateLimited      = "rate_limit_exceeded"
	codeNotFound         = "not_found"
	codeMethodNotAllowed = "method_not_allowed"
	codeInternal         = "internal_error"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var invalidBody *ErrInvalidBody
	var validationErr *schemas.ValidationError
	var tooLarge *ErrBodyTooLarge

	switch {
	case errors.As(err, &invalidBody):
		return http.StatusBadRequest
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the JSON error payload for err.
// Internal failures never echo their message to the caller.
func errorBody(err error) map[string]any {
	var invalidBody *ErrInvalidBody
	var validationErr *schemas.ValidationError
	var tooLarge *ErrBodyTooLarge

	switch {
	case errors.As(err, &invalidBody):
		return map[string]any{
			"error":   codeInvalidBody,
			"message": "Invalid JSON body",
			"detail":  invalidBody.Err.Errors,
		}
	case errors.As(err, &validationErr):
		return map[string]any{
			"error":  codeValidationFailed,
			"detail": validationErr.Errors,
		}
	case errors.As(err, &tooLarge):
		return map[string]any{
			"error":   codeBodyTooLarge,
			"message": tooLarge.Error(),
		}
	default:
		return map[string]any{
			"error":   codeInternal,
			"message": "internal server error",
		}
	}
}
