package csvxml

import "fmt"

// ReadError reports an I/O failure from the underlying source during
// conversion. Line and Column locate the next unread character
// (1-indexed).
type ReadError struct {
	Line   int
	Column int
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("csvxml: read failed at line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// DecodeError reports input bytes that are not valid for the configured
// encoding. Line and Column locate the offending position (1-indexed).
type DecodeError struct {
	Line   int
	Column int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("csvxml: decode failed at line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// SinkError reports that the event sink rejected an emission. Event
// names the emission that failed.
type SinkError struct {
	Event string
	Err   error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("csvxml: sink rejected %s: %v", e.Event, e.Err)
}

// Unwrap returns the underlying error.
func (e *SinkError) Unwrap() error {
	return e.Err
}

// OptionsError represents an invalid option configuration.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return "csvxml: invalid " + e.Field + ": " + e.Message
}
