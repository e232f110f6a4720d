package types

import (
	"errors"
	"strings"
)

// SymbolKind represents the kind of documented Vyper construct
type SymbolKind string

const (
	KindContract  SymbolKind = "contract"
	KindInterface SymbolKind = "interface"
	KindEvent     SymbolKind = "event"
	KindEnum      SymbolKind = "enum"
	KindStruct    SymbolKind = "struct"
	KindConstant  SymbolKind = "constant"
	KindImmutable SymbolKind = "immutable"
	KindStateVar  SymbolKind = "statevar"
	KindFunction  SymbolKind = "function"
)

// AllKinds lists every symbol kind in declaration order
var AllKinds = []SymbolKind{
	KindContract, KindInterface, KindEvent, KindEnum, KindStruct,
	KindConstant, KindImmutable, KindStateVar, KindFunction,
}

// Mutability values accepted by the function directive
const (
	MutabilityNonpayable = "nonpayable"
	MutabilityPayable    = "payable"
	MutabilityPure       = "pure"
	MutabilityView       = "view"
)

// Visibility values accepted by the function directive
const (
	VisibilityExternal = "external"
	VisibilityInternal = "internal"
)

// Scope is the active qualification context while parsing a document.
// At most two levels are ever nested: a contract and, inside an interface
// block, the interface name. A zero Scope means top level.
type Scope struct {
	Contract  string
	Interface string
}

// IsZero returns true if no contract or interface scope is active
func (s Scope) IsZero() bool {
	return s.Contract == "" && s.Interface == ""
}

// SymbolEntry represents a registered symbol in the symbol table
type SymbolEntry struct {
	FullName string // Fully qualified dotted name, e.g. "Token.transfer"
	Kind     SymbolKind
	Anchor   string // Stable node identifier for linking
	DocID    string // Declaring document, path relative to project root
	Aliased  bool   // True if this entry duplicates a canonical definition
}

// ContractEntry represents one row of the contract registry
type ContractEntry struct {
	Name       string
	DocID      string
	Anchor     string
	Synopsis   string
	Platform   string
	Deprecated bool
}

// ValidateKind checks if the symbol kind is valid
func (e *SymbolEntry) ValidateKind() error {
	switch e.Kind {
	case KindContract, KindInterface, KindEvent, KindEnum, KindStruct,
		KindConstant, KindImmutable, KindStateVar, KindFunction:
		return nil
	default:
		return errors.New("invalid symbol kind")
	}
}

// Validate performs comprehensive validation of the entry
func (e *SymbolEntry) Validate() error {
	if e.FullName == "" {
		return errors.New("symbol name is required")
	}

	if err := e.ValidateKind(); err != nil {
		return err
	}

	if e.DocID == "" {
		return errors.New("declaring document is required")
	}

	if e.Anchor == "" {
		return errors.New("anchor is required")
	}

	return nil
}

// ShortName returns the last dotted component of the fully qualified name
func (e *SymbolEntry) ShortName() string {
	if i := strings.LastIndex(e.FullName, "."); i >= 0 {
		return e.FullName[i+1:]
	}
	return e.FullName
}

// IsNested returns true if the contract name contains a dotted owner prefix
func (c *ContractEntry) IsNested() bool {
	return strings.Contains(c.Name, ".")
}
