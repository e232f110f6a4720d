package types

import "strings"

// Param represents a single parameter parsed from a signature argument list
type Param struct {
	Name    string
	Type    string // Type annotation following ":", empty if omitted
	Default string // Default value following "=", empty if omitted
}

// Signature represents the structured form of a one-line directive signature
type Signature struct {
	// Name is the normalized short name, the last identifier in the line
	Name string

	// Prefix is the owner prefix preceding the name, without trailing dot
	Prefix string

	// Params holds the parsed argument list in declaration order.
	// Nil when the signature carried no parenthesized list at all;
	// empty but non-nil for an explicit "()"
	Params []Param

	// Return is the raw return annotation following "->", empty if absent
	Return string

	// FullName is the fully qualified name the symbol registers under,
	// combining the active scope with the prefix and name
	FullName string

	// HasParens reports whether the signature carried an argument list
	HasParens bool
}

// String reconstructs a display form of the signature
func (s *Signature) String() string {
	var b strings.Builder
	if s.Prefix != "" {
		b.WriteString(s.Prefix)
		b.WriteString(".")
	}
	b.WriteString(s.Name)
	if s.HasParens {
		b.WriteString("(")
		for i, p := range s.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
			if p.Type != "" {
				b.WriteString(": ")
				b.WriteString(p.Type)
			}
			if p.Default != "" {
				b.WriteString(" = ")
				b.WriteString(p.Default)
			}
		}
		b.WriteString(")")
	}
	if s.Return != "" {
		b.WriteString(" -> ")
		b.WriteString(s.Return)
	}
	return b.String()
}
