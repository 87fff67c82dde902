package dataset

import "github.com/datalens/backend/internal/domain/shared"

// Error codes surfaced by dataset and EDA operations. The transport layer
// maps these onto HTTP statuses; the codes themselves are stable API.
var (
	ErrNoDataLoaded = shared.NewDomainError("NO_DATA_LOADED", "Please load data first.")

	ErrInsufficientNumericColumns = shared.NewDomainError(
		"INSUFFICIENT_NUMERIC_COLUMNS", "At least two numeric columns are required")
)

// NewColumnNotFoundError reports a reference to a column the table does not have.
func NewColumnNotFoundError(name string) *shared.DomainError {
	return shared.NewDomainError("COLUMN_NOT_FOUND", "Column not found: "+name)
}

// NewNotNumericColumnError reports a numeric-only operation applied to a
// non-numeric column.
func NewNotNumericColumnError(name string) *shared.DomainError {
	return shared.NewDomainError("NOT_NUMERIC_COLUMN", "Column is not numeric: "+name)
}

// NewInvalidParameterError reports an out-of-range or unknown request parameter.
func NewInvalidParameterError(message string) *shared.DomainError {
	return shared.NewDomainError("INVALID_PARAMETER", message)
}
