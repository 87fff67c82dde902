package dto

import "net/http"

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeValidation is used for failed request validation
	ErrCodeValidation = "ERR_VALIDATION"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Analysis error codes as surfaced by the domain layer
const (
	// ErrCodeNoDataLoaded is used when no dataset is loaded in the session
	ErrCodeNoDataLoaded = "NO_DATA_LOADED"
	// ErrCodeColumnNotFound is used when a requested column does not exist
	ErrCodeColumnNotFound = "COLUMN_NOT_FOUND"
	// ErrCodeNotNumericColumn is used when a numeric operation targets a
	// non-numeric column
	ErrCodeNotNumericColumn = "NOT_NUMERIC_COLUMN"
	// ErrCodeInsufficientNumericColumns is used when correlation needs more
	// numeric columns than the dataset has
	ErrCodeInsufficientNumericColumns = "INSUFFICIENT_NUMERIC_COLUMNS"
	// ErrCodeInvalidParameter is used for out-of-range analysis parameters
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	// Analysis errors
	ErrCodeNoDataLoaded:               http.StatusConflict,
	ErrCodeColumnNotFound:             http.StatusNotFound,
	ErrCodeNotNumericColumn:           http.StatusUnprocessableEntity,
	ErrCodeInsufficientNumericColumns: http.StatusUnprocessableEntity,
	ErrCodeInvalidParameter:           http.StatusBadRequest,

	// Loader and connector errors
	"UNSUPPORTED_FORMAT":   http.StatusBadRequest,
	"EMPTY_FILE":           http.StatusBadRequest,
	"INVALID_JSON":         http.StatusBadRequest,
	"INVALID_EXCEL":        http.StatusBadRequest,
	"INVALID_INPUT":        http.StatusBadRequest,
	"NOT_FOUND":            http.StatusNotFound,
	"NOT_CONNECTED":        http.StatusConflict,
	"CONNECTION_FAILED":    http.StatusBadGateway,
	"QUERY_FAILED":         http.StatusBadGateway,
	"RENDERER_UNAVAILABLE": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
