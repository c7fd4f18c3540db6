package dto

import (
	"net/http"
	"strings"
)

// General error codes produced by the HTTP layer itself
const (
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeInvalidTenant  = "INVALID_TENANT"
	ErrCodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	ErrCodeProvisioning   = "SCHEMA_PROVISIONING_FAILED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
)

// ErrorCodeHTTPStatus maps domain and HTTP error codes to status codes.
// Codes missing here are classified by StatusFor.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeProvisioning: http.StatusInternalServerError,

	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeInvalidTenant:  http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	ErrCodeInvalidRequest: http.StatusBadRequest,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"FORBIDDEN":           http.StatusForbidden,
	ErrCodeNotFound:       http.StatusNotFound,

	// credential conflicts are reported as bad input, like the signup form does
	"USER_EXISTS":  http.StatusBadRequest,
	"EMAIL_IN_USE": http.StatusBadRequest,

	"ALREADY_EXISTS": http.StatusConflict,
	"CONFLICT":       http.StatusConflict,
	"IN_USE":         http.StatusConflict,
	"INVALID_STATE":  http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// StatusFor returns the HTTP status for an error code. Unlisted codes are
// classified by shape: *_EXISTS and *_IN_USE are conflicts; INVALID_*,
// *_INVALID, *_REQUIRED and PASSWORD_* are bad requests; anything else is an
// internal error.
func StatusFor(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_EXISTS"), strings.HasSuffix(code, "_IN_USE"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"),
		strings.HasSuffix(code, "_INVALID"),
		strings.HasSuffix(code, "_REQUIRED"),
		strings.HasPrefix(code, "PASSWORD_") && code != "PASSWORD_HASH_ERROR":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// TranslationKey returns the settings page message key for a domain code,
// e.g. LEVEL_IN_USE -> settings.level_in_use
func TranslationKey(code string) string {
	return "settings." + strings.ToLower(code)
}
