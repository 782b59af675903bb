package compiler

import "fmt"

// Error codes.
//
// Parse errors (E0xx) are structural: the input text cannot be read as a
// spec at all. Validation errors (E1xx) mean the spec parsed but violates
// a referential or grammar rule. Both classes abort compilation of the
// file with no partial output.
const (
	// Parse errors (E001-E009)
	ErrHeaderCountMismatch = "E001" // headers found != entries parsed (e.g. unterminated fence)
	ErrBadDocumentMarkers  = "E002" // malformed cursor markers in a fenced block

	// Validation errors (E101-E109)
	ErrDuplicateTitle    = "E101" // two entries share a title
	ErrUnknownDependency = "E102" // comesAfter names an undeclared or later entry
	ErrUnrecognizedFlag  = "E103" // flag text outside the closed grammar
	ErrDanglingType      = "E104" // type:<char> with no preceding operation
	ErrBadTypeOperation  = "E105" // type: argument is not a single character
	ErrEmptyTitle        = "E106" // header text collapses to an empty title
)

// ParseError is a structural error in the raw spec text.
type ParseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ValidationError is a referential or grammar violation in a parsed spec.
// Title names the offending entry when known.
type ValidationError struct {
	Code    string `json:"code"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Title, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
