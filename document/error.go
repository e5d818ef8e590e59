package document

import "fmt"

// SplitterError represents errors that can occur during text splitting
type SplitterError struct {
	Op      string
	Message string
	Err     error
}

func (e *SplitterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("splitter.%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("splitter.%s: %s", e.Op, e.Message)
}

func (e *SplitterError) Unwrap() error {
	return e.Err
}

func validateSizes(op string, chunkSize, chunkOverlap int) error {
	switch {
	case chunkSize <= 0:
		return &SplitterError{Op: op, Message: "chunk size must be positive", Err: fmt.Errorf("invalid chunk size: %d", chunkSize)}
	case chunkOverlap < 0:
		return &SplitterError{Op: op, Message: "chunk overlap must be non-negative", Err: fmt.Errorf("invalid chunk overlap: %d", chunkOverlap)}
	case chunkOverlap >= chunkSize:
		return &SplitterError{Op: op, Message: "chunk overlap must be less than chunk size", Err: fmt.Errorf("overlap %d >= chunk size %d", chunkOverlap, chunkSize)}
	}
	return nil
}
