// Package apierror provides the standardized error surface for the API.
// Services return *apierror.Error; handlers render it as the common envelope
// so raw database internals never reach a client.
package apierror

import "net/http"

// Code is the machine-readable error class echoed to clients.
type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeNotFound            Code = "NOT_FOUND"
	CodeAlreadyExists       Code = "ALREADY_EXISTS"
	CodeOperationNotAllowed Code = "OPERATION_NOT_ALLOWED"
	CodeInternal            Code = "INTERNAL_ERROR"
	CodeExternalService     Code = "EXTERNAL_SERVICE_ERROR"
)

// Error is a business error with an explicit HTTP status mapping.
// Message is user-facing (Portuguese); Details carries per-field strings for
// validation failures.
type Error struct {
	Status  int      `json:"-"`
	Code    Code     `json:"errorCode"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string { return e.Message }

func New(status int, code Code, msg string) *Error {
	return &Error{Status: status, Code: code, Message: msg}
}

func Validation(msg string, details ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: msg, Details: details}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

func AlreadyExists(msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: CodeAlreadyExists, Message: msg}
}

func NotAllowed(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeOperationNotAllowed, Message: msg}
}

func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: msg}
}

// Internal hides the underlying cause from the client; the handler logs it.
func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "Erro interno do servidor"}
}

// Envelope is the wire format of every 4xx/5xx response.
type Envelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	ErrorCode  Code     `json:"errorCode"`
	Details    []string `json:"details,omitempty"`
	Timestamp  string   `json:"timestamp"`
	Path       string   `json:"path"`
	Method     string   `json:"method"`
	ErrorID    string   `json:"errorId"`
}
