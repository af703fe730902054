package models

import "fmt"

// Error codes surfaced in the API error envelope.
const (
	CodeInvalidURL           = "INVALID_URL"
	CodeMissingURL           = "MISSING_URL"
	CodeInvalidFormat        = "INVALID_FORMAT"
	CodeInvalidVideoID       = "INVALID_VIDEO_ID"
	CodePlatformNotSupported = "PLATFORM_NOT_SUPPORTED"
	CodeDownloadNotFound     = "DOWNLOAD_NOT_FOUND"
	CodeInvalidState         = "INVALID_STATE"
	CodeValidation           = "VALIDATION_ERROR"
	CodeMetadataExtraction   = "METADATA_EXTRACTION_ERROR"
	CodeDownloadInfo         = "DOWNLOAD_INFO_ERROR"
	CodeStream               = "STREAM_ERROR"
	CodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	CodeInternal             = "INTERNAL_ERROR"
)

// APIError is the typed error every service-boundary failure is normalized
// into. Extractor failures of any kind (network, parse, missing field)
// collapse into the enclosing operation's code.
type APIError struct {
	Message    string
	Code       string
	StatusCode int
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError builds a service-boundary error with an HTTP status.
func NewAPIError(message, code string, statusCode int) *APIError {
	return &APIError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
	}
}

var ErrSessionNotFound = fmt.Errorf("download not found")
