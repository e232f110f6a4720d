package types

import "fmt"

// ErrorKind classifies recoverable per-block failures during parsing
type ErrorKind string

const (
	ErrMalformedSignature  ErrorKind = "malformed_signature"
	ErrInvalidNesting      ErrorKind = "invalid_nesting"
	ErrDuplicateDefinition ErrorKind = "duplicate_definition"
	ErrUnresolvedReference ErrorKind = "unresolved_reference"
)

// ParseError represents a recoverable error tied to one directive block
// or reference. The offending block is skipped; the rest of the document
// continues processing.
type ParseError struct {
	DocID   string
	Line    int
	Kind    ErrorKind
	Message string
}

// Error implements the error interface
func (pe *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s", pe.DocID, pe.Line, pe.Kind, pe.Message)
}

// ParseResult represents the output of parsing one documentation source file
type ParseResult struct {
	DocID string

	// Extracted data
	Symbols    []SymbolEntry
	Contracts  []ContractEntry
	References []Reference
	Nodes      []*Node

	// Errors encountered during parsing
	Errors []ParseError
}

// HasErrors returns true if any parsing errors occurred
func (pr *ParseResult) HasErrors() bool {
	return len(pr.Errors) > 0
}

// AddError adds a parsing error to the result
func (pr *ParseResult) AddError(line int, kind ErrorKind, msg string) {
	pr.Errors = append(pr.Errors, ParseError{
		DocID:   pr.DocID,
		Line:    line,
		Kind:    kind,
		Message: msg,
	})
}
