// Package errs defines the SCIM core's error taxonomy: a single rich error
// type carrying a stable machine-readable code, an HTTP status a transport
// adapter can map directly, and optional structured context.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes from spec §6. Transport adapters map these to HTTP status
// codes using HTTPStatus; the codes themselves are the stable contract.
const (
	CodeInvalidRequest          = "INVALID_REQUEST"
	CodeValidationError         = "VALIDATION_ERROR"
	CodeResourceNotFound        = "RESOURCE_NOT_FOUND"
	CodeSchemaNotFound          = "SCHEMA_NOT_FOUND"
	CodeUnsupportedResourceType = "UNSUPPORTED_RESOURCE_TYPE"
	CodeUnsupportedOperation    = "UNSUPPORTED_OPERATION"
	CodeVersionMismatch         = "version_mismatch"
	CodeDuplicateAttribute      = "DUPLICATE_ATTRIBUTE"
	CodeQuotaExceeded           = "QUOTA_EXCEEDED"
	CodeTenantValidation        = "TENANT_VALIDATION"
	CodeProviderError           = "PROVIDER_ERROR"
	CodeInternalError           = "INTERNAL_ERROR"
)

// Error is the SCIM core's error type. It implements error, errors.Is (by
// code), and errors.Unwrap.
type Error struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
	Context    map[string]any `json:"context,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is compares errors by code, so sentinels like ErrResourceNotFound can be
// matched with errors.Is regardless of attached context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithContext attaches a debug-context key/value and returns the receiver.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates a fresh Error.
func New(code, message string, httpStatus int) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: httpStatus, Timestamp: time.Now()}
}

// Wrap creates an Error that carries an underlying cause. The cause is
// never surfaced verbatim to clients; callers format Message themselves.
func Wrap(err error, code, message string, httpStatus int) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: httpStatus, Err: err, Timestamp: time.Now()}
}

// Constructors, one per condition, following the teacher's per-component
// error-constructor convention (core/user/errors.go).

func InvalidRequest(reason string) *Error {
	return New(CodeInvalidRequest, "Invalid request", http.StatusBadRequest).WithContext("reason", reason)
}

func ValidationError(reason string) *Error {
	return New(CodeValidationError, "Validation failed", http.StatusBadRequest).WithContext("reason", reason)
}

func ValidationErrorField(field, reason string) *Error {
	return New(CodeValidationError, "Validation failed", http.StatusBadRequest).
		WithContext("field", field).WithContext("reason", reason)
}

func ResourceNotFound(resourceType, id string) *Error {
	return New(CodeResourceNotFound, "Resource not found", http.StatusNotFound).
		WithContext("resource_type", resourceType).WithContext("id", id)
}

func SchemaNotFound(uri string) *Error {
	return New(CodeSchemaNotFound, "Schema not found", http.StatusNotFound).WithContext("uri", uri)
}

func UnsupportedResourceType(resourceType string) *Error {
	return New(CodeUnsupportedResourceType, "Unsupported resource type", http.StatusBadRequest).
		WithContext("resource_type", resourceType)
}

func UnsupportedOperation(op string) *Error {
	return New(CodeUnsupportedOperation, "Unsupported operation", http.StatusMethodNotAllowed).
		WithContext("operation", op)
}

func DuplicateAttribute(attribute, value string) *Error {
	return New(CodeDuplicateAttribute, "Attribute value already in use", http.StatusConflict).
		WithContext("attribute", attribute).WithContext("value", value)
}

func QuotaExceeded(resourceType string, max int) *Error {
	return New(CodeQuotaExceeded, "Tenant resource quota exceeded", http.StatusConflict).
		WithContext("resource_type", resourceType).WithContext("max", max)
}

func TenantValidation(reason string) *Error {
	return New(CodeTenantValidation, "Tenant context invalid", http.StatusBadRequest).WithContext("reason", reason)
}

func ProviderError(err error) *Error {
	return Wrap(err, CodeProviderError, "Storage provider operation failed", http.StatusInternalServerError)
}

func InternalError(err error) *Error {
	return Wrap(err, CodeInternalError, "Internal error", http.StatusInternalServerError)
}

// Sentinel errors for use with errors.Is, matched by code only.
var (
	ErrResourceNotFound = &Error{Code: CodeResourceNotFound}
	ErrDuplicate        = &Error{Code: CodeDuplicateAttribute}
	ErrQuotaExceeded    = &Error{Code: CodeQuotaExceeded}
	ErrValidation       = &Error{Code: CodeValidationError}
)

// Is reports whether err matches target by error code.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first *Error in err's chain.
func As(err error, target any) bool { return errors.As(err, target) }

// Code extracts the error code, defaulting to CodeInternalError.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternalError
}

// HTTPStatus extracts the HTTP status, defaulting to 500.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}
