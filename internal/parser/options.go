package parser

import "github.com/vyperlang/vydoc/pkg/types"

// optionSpec describes the options a directive kind accepts: flag options
// take no value, value options take free text, and choice options are
// restricted to a vocabulary.
type optionSpec struct {
	flags   map[string]bool
	values  map[string]bool
	choices map[string][]string
}

func (s optionSpec) allowsFlag(name string) bool  { return s.flags[name] }
func (s optionSpec) allowsValue(name string) bool { return s.values[name] || s.choices[name] != nil }

func (s optionSpec) allowsChoice(name, value string) bool {
	vocab, ok := s.choices[name]
	if !ok {
		return true
	}
	for _, v := range vocab {
		if v == value {
			return true
		}
	}
	return false
}

// baseFlags are accepted by every directive
var baseFlags = []string{"noindex", "alias", "deprecated"}

// globalSpec covers statevar and immutable directives
var globalSpec = optionSpec{
	flags:  flagSet("public"),
	values: valueSet("type"),
}

// optionSpecs maps each directive kind to its accepted options
var optionSpecs = map[types.SymbolKind]optionSpec{
	types.KindContract: {
		flags:  flagSet(),
		values: valueSet("synopsis", "platform"),
	},
	types.KindInterface: {flags: flagSet(), values: valueSet("synopsis")},
	types.KindEvent:     {flags: flagSet(), values: valueSet()},
	types.KindEnum:      {flags: flagSet(), values: valueSet()},
	types.KindStruct:    {flags: flagSet(), values: valueSet()},
	types.KindStateVar:  globalSpec,
	types.KindImmutable: globalSpec,
	types.KindConstant: {
		flags:  flagSet("public"),
		values: valueSet("type", "value"),
	},
	types.KindFunction: {
		flags:  flagSet(),
		values: valueSet(),
		choices: map[string][]string{
			"mutability": {
				types.MutabilityNonpayable,
				types.MutabilityPayable,
				types.MutabilityPure,
				types.MutabilityView,
			},
			"visibility": {
				types.VisibilityExternal,
				types.VisibilityInternal,
			},
		},
	},
}

// fieldKinds maps field-list names to the node field they populate
var fieldKinds = map[string]types.FieldKind{
	"param":   types.FieldParam,
	"returns": types.FieldReturns,
	"revert":  types.FieldRevert,
	"topic":   types.FieldTopic,
	"data":    types.FieldData,
	"member":  types.FieldMember,
	"element": types.FieldElement,
}

func flagSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names)+len(baseFlags))
	for _, n := range baseFlags {
		set[n] = true
	}
	for _, n := range names {
		set[n] = true
	}
	return set
}

func valueSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
