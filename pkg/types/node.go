package types

// FieldKind identifies a body field attached to a directive node
type FieldKind string

const (
	FieldParam   FieldKind = "param"
	FieldReturns FieldKind = "returns"
	FieldRevert  FieldKind = "revert"
	FieldTopic   FieldKind = "topic"
	FieldData    FieldKind = "data"
	FieldMember  FieldKind = "member"
	FieldElement FieldKind = "element"
)

// Field represents one field-list entry in a directive body,
// e.g. ":param to: recipient address"
type Field struct {
	Kind FieldKind
	Arg  string // Field argument, e.g. the parameter name; may be empty
	Body string // Free-text description
}

// Node is the framework-native output node emitted for one directive.
// Consumers (renderers, the MCP surface) receive these rather than any
// renderer-specific construct.
type Node struct {
	Kind     SymbolKind
	FullName string
	Anchor   string // Empty when the directive carried :noindex:

	// Display is the signature as rendered, honoring the
	// add_contract_names configuration switch
	Display string

	Options map[string]string // Key-value options, e.g. "type", "synopsis"
	Flags   []string          // Flag options, e.g. "public", "deprecated"
	Fields  []Field
	Body    string // Free-text body paragraphs, field lists excluded

	Children []*Node // Nested directive nodes, in document order
	Line     int
}

// HasFlag reports whether the node carries the named flag option
func (n *Node) HasFlag(name string) bool {
	for _, f := range n.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// Option returns the named key-value option, or "" when absent
func (n *Node) Option(name string) string {
	if n.Options == nil {
		return ""
	}
	return n.Options[name]
}
