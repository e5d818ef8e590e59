package datasource

import (
	"errors"
	"fmt"
)

// DataSourceError represents errors that can occur during data source operations
type DataSourceError struct {
	Source  string
	Op      string
	Err     error
	Code    string
	Message string
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("datasource.%s [%s]: %s: %v", e.Op, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("datasource.%s [%s]: %s", e.Op, e.Source, e.Message)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound          = "NotFound"
	ErrCodeInvalidSource     = "InvalidSource"
	ErrCodeAccessDenied      = "AccessDenied"
	ErrCodeInvalidFormat     = "InvalidFormat"
	ErrCodeRateLimitExceeded = "RateLimitExceeded"
	ErrCodeInternal          = "Internal"

	// ErrCodeFileAccess means the source could not be opened or read.
	ErrCodeFileAccess = "FileAccess"
	// ErrCodeParse means the source held malformed JSON.
	ErrCodeParse = "ParseError"
	// ErrCodeInvalidContent means an extracted value cannot become document text.
	ErrCodeInvalidContent = "InvalidContent"
	// ErrCodeInvalidQuery means the query expression failed to compile or run.
	ErrCodeInvalidQuery = "InvalidQuery"
)

// NewError creates a new DataSourceError
func NewError(source, op, code, message string, err error) *DataSourceError {
	return &DataSourceError{
		Source:  source,
		Op:      op,
		Err:     err,
		Code:    code,
		Message: message,
	}
}

// HasCode reports whether err wraps a DataSourceError with the given code.
func HasCode(err error, code string) bool {
	var dsErr *DataSourceError
	if errors.As(err, &dsErr) {
		return dsErr.Code == code
	}
	return false
}
