package embedding

import "fmt"

// EmbeddingError represents errors that can occur during embedding operations
type EmbeddingError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding.%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("embedding.%s: %s", e.Op, e.Message)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidInput      = "InvalidInput"
	ErrCodeEmptyInput        = "EmptyInput"
	ErrCodeModelNotAvailable = "ModelNotAvailable"
	ErrCodeRateLimitExceeded = "RateLimitExceeded"
	ErrCodeCountMismatch     = "CountMismatch"
	ErrCodeAPIError          = "APIError"
	ErrCodeInternal          = "Internal"
)

func NewError(op, code, message string, err error) *EmbeddingError {
	return &EmbeddingError{Op: op, Code: code, Message: message, Err: err}
}

func ErrEmptyInput(op string) error {
	return NewError(op, ErrCodeEmptyInput, "input text or documents cannot be empty", nil)
}
