package errors

import "fmt"

// AppError is the error type every voxkit package returns across its
// boundary. HTTPStatus and Retryable follow from Code unless overridden.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail adds one detail entry.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges details into the error.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// New creates an AppError whose status and retryability come from code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: StatusFor(code),
		Retryable:  IsRetryableCode(code),
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap returns the AppError in err's chain, or err as an internal error.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// ServiceUnavailable reports a sidecar that is up but refusing work, e.g.
// still loading its model.
func ServiceUnavailable(service string) *AppError {
	return Newf(ErrCodeServiceUnavailable, "The %s is temporarily unavailable. Please try again.", service).
		WithDetail("service", service)
}

// ConnectionFailed reports a sidecar that could not be reached.
func ConnectionFailed(service string) *AppError {
	return Newf(ErrCodeConnectionFailed, "Unable to connect to %s. Please verify the service is running.", service).
		WithDetail("service", service)
}

func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, "The request took too long. Please try again.").
		WithDetail("operation", operation)
}

func NotFound(resource, id string) *AppError {
	e := Newf(ErrCodeNotFound, "The requested %s was not found.", resource).WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

func RateLimited(limit int) *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please slow down.").
		WithDetail("limit_per_minute", limit)
}

func PayloadTooLarge(maxBytes int64) *AppError {
	return New(ErrCodePayloadTooLarge, "The uploaded file is too large.").
		WithDetail("max_bytes", maxBytes)
}

// InvalidInput rejects a field value; field may be empty.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "Invalid input: "+reason)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation is an INVALID_INPUT error carrying a prepared message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, "Missing required field: "+field).WithDetail("field", field)
}

func InvalidFormat(field, expected string) *AppError {
	return Newf(ErrCodeInvalidFormat, "Invalid format for %s. Expected: %s", field, expected).
		WithDetails(map[string]any{"field": field, "expected_format": expected})
}

// UnsupportedAudio reports audio that could not be decoded.
func UnsupportedAudio(path string, cause error) *AppError {
	return New(ErrCodeUnsupportedAudio, "The audio file could not be decoded.").
		WithDetail("path", path).WithCause(cause)
}

// NoEmbeddings reports that diarization had no usable speaker evidence.
func NoEmbeddings(chunks int) *AppError {
	return New(ErrCodeNoEmbeddings, "No speech chunk was long enough to produce a speaker embedding.").
		WithDetail("chunks", chunks)
}

// DependencyUnavailable reports that a model the operation relies on is
// missing or failed.
func DependencyUnavailable(dependency string, cause error) *AppError {
	return Newf(ErrCodeDependencyUnavailable, "The %s is unavailable.", dependency).
		WithDetail("dependency", dependency).WithCause(cause)
}

// DegenerateClustering reports that no cluster count could be selected.
func DegenerateClustering(samples int) *AppError {
	return New(ErrCodeDegenerateClustering, "No candidate speaker count produced a valid clustering.").
		WithDetail("samples", samples)
}

func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.").
		WithCause(cause)
}

// ExternalServiceError reports a sidecar that answered with a failure.
func ExternalServiceError(service string, cause error) *AppError {
	return Newf(ErrCodeExternalService, "The %s service encountered an error. Please try again.", service).
		WithDetail("service", service).WithCause(cause)
}
