package types

import "errors"

// Domain errors for type validation
var (
	ErrEmptyTarget   = errors.New("reference target cannot be empty")
	ErrUnknownRole   = errors.New("unknown reference role")
	ErrEmptyDocument = errors.New("document identifier is required")
)
