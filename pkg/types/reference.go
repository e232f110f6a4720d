package types

import "strings"

// Role identifies the cross-reference role used in an inline reference.
// Each role constrains the set of symbol kinds a target may resolve to;
// RoleObj matches any kind.
type Role string

const (
	RoleContract  Role = "cont"
	RoleInterface Role = "iface"
	RoleEvent     Role = "event"
	RoleEnum      Role = "enum"
	RoleStruct    Role = "struct"
	RoleConstant  Role = "const"
	RoleImmutable Role = "immut"
	RoleStateVar  Role = "svar"
	RoleFunction  Role = "func"
	RoleObj       Role = "obj"
)

// roleKinds maps each role to the symbol kinds it may resolve to
var roleKinds = map[Role][]SymbolKind{
	RoleContract:  {KindContract},
	RoleInterface: {KindInterface},
	RoleEvent:     {KindEvent},
	RoleEnum:      {KindEnum},
	RoleStruct:    {KindStruct},
	RoleConstant:  {KindConstant},
	RoleImmutable: {KindImmutable},
	RoleStateVar:  {KindStateVar},
	RoleFunction:  {KindFunction},
	RoleObj:       AllKinds,
}

// Kinds returns the symbol kinds the role is allowed to resolve to,
// or nil for an unknown role
func (r Role) Kinds() []SymbolKind {
	return roleKinds[r]
}

// Allows reports whether the role may resolve to the given kind
func (r Role) Allows(kind SymbolKind) bool {
	for _, k := range roleKinds[r] {
		if k == kind {
			return true
		}
	}
	return false
}

// Reference represents an inline cross-reference collected during parsing,
// resolved after the merge phase when the full symbol table is available
type Reference struct {
	Target string // Raw target text, possibly carrying a "." or "~" modifier
	Role   Role
	Scope  Scope  // Contract/interface context at the point of reference
	DocID  string // Referencing document
	Line   int
}

// Match represents one resolution result for a reference
type Match struct {
	Entry SymbolEntry
	Title string // Display title after modifier handling
}

// ParseTarget splits a raw reference target into its modifier and the name
// to match. A leading "." forces suffix-first lookup; a leading "~"
// suppresses all but the last dotted component in the display title.
func ParseTarget(raw string) (name string, suffixFirst bool, shorten bool) {
	switch {
	case strings.HasPrefix(raw, "."):
		return raw[1:], true, false
	case strings.HasPrefix(raw, "~"):
		return raw[1:], false, true
	default:
		return raw, false, false
	}
}

// DisplayTitle computes the title a resolved reference renders with
func DisplayTitle(raw string) string {
	name, _, shorten := ParseTarget(raw)
	if shorten {
		if i := strings.LastIndex(name, "."); i >= 0 {
			return name[i+1:]
		}
	}
	return name
}
