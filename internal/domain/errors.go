package domain

import "fmt"

// DecodeError reports a duration token that could not be decoded.
type DecodeError struct {
	Token  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid duration %q: %s", e.Token, e.Reason)
}

// MalformedRecord reports a trace line that is not a valid record.
// LineNo is 1-based and zero when the line was decoded in isolation.
type MalformedRecord struct {
	Line   string
	LineNo int
	Cause  error
}

func (e *MalformedRecord) Error() string {
	if e.LineNo > 0 {
		return fmt.Sprintf("malformed record at line %d: %v: %s", e.LineNo, e.Cause, e.Line)
	}
	return fmt.Sprintf("malformed record: %v: %s", e.Cause, e.Line)
}

func (e *MalformedRecord) Unwrap() error { return e.Cause }

// LoadError reports a trace file that could not be opened or read.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }
