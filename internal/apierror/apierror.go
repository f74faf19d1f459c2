// Package apierror defines the error envelopes the HTTP layer returns.
// Handlers never serialize raw errors: internals (SQL, stack traces, driver
// messages) stay out of responses.
package apierror

// APIError is the body of every non-2xx response.
type APIError struct {
	Detail string `json:"detail"`
}

func (e *APIError) Error() string { return e.Detail }

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries per-field messages from request binding.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
