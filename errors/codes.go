package errors

import "net/http"

// ErrorCode is the machine-readable code sent to clients.
type ErrorCode string

// Sidecar availability. All retryable.
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
)

// Request problems.
const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrCodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField     ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat    ErrorCode = "INVALID_FORMAT"
	ErrCodeUnsupportedAudio ErrorCode = "UNSUPPORTED_AUDIO"
)

// Diarization outcomes.
const (
	// ErrCodeNoEmbeddings means no chunk produced a usable embedding.
	ErrCodeNoEmbeddings ErrorCode = "NO_EMBEDDINGS"
	// ErrCodeDependencyUnavailable means a model is missing or failed.
	ErrCodeDependencyUnavailable ErrorCode = "DEPENDENCY_UNAVAILABLE"
	// ErrCodeDegenerateClustering means no cluster count could be chosen.
	ErrCodeDegenerateClustering ErrorCode = "DEGENERATE_CLUSTERING"
)

const (
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

type codeInfo struct {
	status    int
	retryable bool
}

var codes = map[ErrorCode]codeInfo{
	ErrCodeServiceUnavailable:    {http.StatusServiceUnavailable, true},
	ErrCodeConnectionFailed:      {http.StatusServiceUnavailable, true},
	ErrCodeTimeout:               {http.StatusGatewayTimeout, true},
	ErrCodeNotFound:              {http.StatusNotFound, false},
	ErrCodeRateLimited:           {http.StatusTooManyRequests, true},
	ErrCodePayloadTooLarge:       {http.StatusRequestEntityTooLarge, false},
	ErrCodeInvalidInput:          {http.StatusBadRequest, false},
	ErrCodeMissingField:          {http.StatusBadRequest, false},
	ErrCodeInvalidFormat:         {http.StatusBadRequest, false},
	ErrCodeUnsupportedAudio:      {http.StatusUnprocessableEntity, false},
	ErrCodeNoEmbeddings:          {http.StatusUnprocessableEntity, false},
	ErrCodeDependencyUnavailable: {http.StatusServiceUnavailable, true},
	ErrCodeDegenerateClustering:  {http.StatusUnprocessableEntity, false},
	ErrCodeInternal:              {http.StatusInternalServerError, false},
	ErrCodeExternalService:       {http.StatusBadGateway, true},
}

// IsRetryableCode reports whether errors with code are worth retrying.
func IsRetryableCode(code ErrorCode) bool {
	return codes[code].retryable
}

// StatusFor returns the HTTP status for code, 500 for unknown codes.
func StatusFor(code ErrorCode) int {
	if info, ok := codes[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}
