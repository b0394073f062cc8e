// Package handlers wires the steelops HTTP surface: JSON route handlers over
// the PocketBase record layer.
package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"
)

// Error kinds returned in the "error" field of failure responses.
const (
	ErrKindValidation       = "VALIDATION_MISSING"
	ErrKindNotFound         = "NOT_FOUND"
	ErrKindMarginBelowFloor = "MARGIN_BELOW_FLOOR"
	ErrKindForbidden        = "FORBIDDEN"
	ErrKindServer           = "SERVER_ERROR"
)

// apiError writes the structured {error, message} failure shape.
func apiError(e *core.RequestEvent, status int, kind, message string) error {
	return e.JSON(status, map[string]string{
		"error":   kind,
		"message": message,
	})
}

// validationMissing reports a required request field that was absent.
func validationMissing(e *core.RequestEvent, field string) error {
	return apiError(e, http.StatusBadRequest, ErrKindValidation, field+" is required")
}

// notFound reports a missing entity.
func notFound(e *core.RequestEvent, what string) error {
	return apiError(e, http.StatusNotFound, ErrKindNotFound, what+" not found")
}

// serverError reports an unhandled failure without leaking its cause.
func serverError(e *core.RequestEvent) error {
	return apiError(e, http.StatusInternalServerError, ErrKindServer, "Something went wrong. Please try again.")
}
