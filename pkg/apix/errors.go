// Package apix defines the wire-level error vocabulary shared by the API and
// its clients. Every gate rejection and handler failure maps to exactly one
// of these outcome keywords.
package apix

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chefpilot/chefpilot-api/pkg/httpx"
)

// Outcome keywords rendered in the "error" field of failure responses.
const (
	CodeMissingToken       = "missing_token"
	CodeInvalidToken       = "invalid_token"
	CodeMissingAuth        = "missing_auth"
	CodeForbidden          = "forbidden"
	CodeTenantRequired     = "tenant_required"
	CodeInvalidTenant      = "invalid_tenant"
	CodeNotAMember         = "not_a_member"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidRefresh     = "invalid_refresh"
	CodeMissingFields      = "missing_fields"
	CodeValidation         = "validation_failed"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeInternal           = "internal"
)

// Error is an API error rendered as {"error": code} with an HTTP status.
// It implements the error interface so handlers and services can pass it
// around like any other error.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`

	// Fields lists missing field names for missing_fields responses.
	Fields []string `json:"fields,omitempty"`

	// Message carries a human-readable detail for validation failures.
	Message string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// WriteError renders the error as a JSON response.
func (e *Error) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

var (
	// Authentication failures: always unauthorized, never reveal which check
	// tripped.
	ErrMissingToken = &Error{StatusCode: http.StatusUnauthorized, Code: CodeMissingToken}
	ErrInvalidToken = &Error{StatusCode: http.StatusUnauthorized, Code: CodeInvalidToken}
	ErrMissingAuth  = &Error{StatusCode: http.StatusUnauthorized, Code: CodeMissingAuth}

	// Authorization failures: always forbidden, never reveal whether the
	// resource exists.
	ErrForbidden      = &Error{StatusCode: http.StatusForbidden, Code: CodeForbidden}
	ErrTenantRequired = &Error{StatusCode: http.StatusForbidden, Code: CodeTenantRequired}
	ErrInvalidTenant  = &Error{StatusCode: http.StatusForbidden, Code: CodeInvalidTenant}
	ErrNotAMember     = &Error{StatusCode: http.StatusForbidden, Code: CodeNotAMember}

	// Session failures. Unknown user and wrong password both collapse to
	// invalid_credentials; unknown and expired refresh tokens both collapse
	// to invalid_refresh.
	ErrInvalidCredentials = &Error{StatusCode: http.StatusUnauthorized, Code: CodeInvalidCredentials}
	ErrInvalidRefresh     = &Error{StatusCode: http.StatusUnauthorized, Code: CodeInvalidRefresh}

	ErrNotFound = &Error{StatusCode: http.StatusNotFound, Code: CodeNotFound}
	ErrInternal = &Error{StatusCode: http.StatusInternalServerError, Code: CodeInternal}
)

// NewMissingFields builds the bad-request response for absent required body
// fields, rejected before any core logic runs.
func NewMissingFields(fields []string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeMissingFields,
		Fields:     fields,
	}
}

// NewValidation builds a bad-request response carrying a validation detail.
func NewValidation(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeValidation,
		Message:    message,
	}
}

// NewConflict builds a conflict response with a specific outcome keyword,
// e.g. already_associated on the tenant association handshake.
func NewConflict(code string) *Error {
	return &Error{StatusCode: http.StatusConflict, Code: code}
}
