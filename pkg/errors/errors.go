package errors

import "fmt"

// Error codes
const (
	CodeMissingCredentials = "MISSING_CREDENTIALS"
	CodeEmptyResponse      = "EMPTY_RESPONSE"
	CodeMalformedResponse  = "MALFORMED_RESPONSE"
	CodeProviderFailure    = "PROVIDER_FAILURE"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeCache              = "CACHE_ERROR"
	CodeService            = "SERVICE_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) base() *AppError {
	return e
}

type coded interface {
	base() *AppError
}

// MissingCredentialsError is raised before any network activity when no usable
// API key can be resolved at call time.
type MissingCredentialsError struct {
	*AppError
}

func NewMissingCredentialsError(message string) *MissingCredentialsError {
	return &MissingCredentialsError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeMissingCredentials,
			StatusCode: 401,
		},
	}
}

// EmptyResponseError is raised when the provider call succeeded but returned no text.
type EmptyResponseError struct {
	*AppError
	Provider string
}

func NewEmptyResponseError(message, provider string) *EmptyResponseError {
	return &EmptyResponseError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeEmptyResponse,
			StatusCode: 502,
			Context: map[string]any{
				"provider": provider,
			},
		},
		Provider: provider,
	}
}

// MalformedResponseError is raised when neither the strict nor the salvage JSON
// parse of the provider payload succeeded.
type MalformedResponseError struct {
	*AppError
}

func NewMalformedResponseError(message string, cause error) *MalformedResponseError {
	return &MalformedResponseError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeMalformedResponse,
			StatusCode: 502,
			Cause:      cause,
		},
	}
}

// ProviderError wraps failures raised by the model provider call itself
// (auth, quota, connectivity, server error).
type ProviderError struct {
	*AppError
	Provider string
}

func NewProviderError(message, provider string, cause error) *ProviderError {
	return &ProviderError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeProviderFailure,
			StatusCode: 502,
			Context: map[string]any{
				"provider": provider,
			},
			Cause: cause,
		},
		Provider: provider,
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// NotFoundError marks a lookup for a resource that does not exist.
type NotFoundError struct {
	*AppError
	Resource string
}

func NewNotFoundError(message, resource string, id any) *NotFoundError {
	return &NotFoundError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeNotFound,
			StatusCode: 404,
			Context: map[string]any{
				"resource": resource,
				"id":       id,
			},
		},
		Resource: resource,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// StatusCodeOf walks the error chain and returns the HTTP status code carried
// by the first AppError found, defaulting to 500.
func StatusCodeOf(err error) int {
	for err != nil {
		if c, ok := err.(coded); ok {
			return c.base().StatusCode
		}
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			err = unwrapper.Unwrap()
			continue
		}
		break
	}
	return 500
}

// CodeOf walks the error chain and returns the error code carried by the first
// AppError found, defaulting to SERVICE_ERROR.
func CodeOf(err error) string {
	for err != nil {
		if c, ok := err.(coded); ok {
			return c.base().Code
		}
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			err = unwrapper.Unwrap()
			continue
		}
		break
	}
	return CodeService
}
