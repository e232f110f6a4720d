package signature

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vyperlang/vydoc/pkg/types"
)

// sigRe matches a one-line directive signature:
//
//	[<prefix> "."] <identifier> ["(" <args> ")" ["->" <return>]]
//
// where <identifier> is a maximal run of word characters. Argument lists
// and the return annotation are captured raw and split separately. The
// args capture is lazy so a parenthesized return annotation such as
// "-> (uint256, bool)" stays out of the argument list; splitParams still
// rejects any args text with unbalanced brackets.
var sigRe = regexp.MustCompile(`^\s*((?:\w+\.)*)(\w+)\s*(?:\((.*?)\)\s*(?:->\s*(.+?))?)?\s*$`)

// kinds that may not appear inside an interface block
var interfaceForbidden = map[types.SymbolKind]bool{
	types.KindStateVar:  true,
	types.KindImmutable: true,
	types.KindConstant:  true,
}

// kinds that may not appear lexically nested in a contract body; they
// must be declared at document top level under a currentcontract scope
var contractInlineForbidden = map[types.SymbolKind]bool{
	types.KindConstant: true,
	types.KindEnum:     true,
	types.KindEvent:    true,
}

// Parse parses a one-line signature for a directive of the given kind
// against the active scope. The inline flag reports whether the directive
// is lexically nested inside a contract or interface body, as opposed to
// standing at document top level under a currentcontract scope.
//
// Nesting validity is checked before the prefix/interface match, so a
// forbidden kind is always reported as invalid nesting even when its
// prefix would also fail to match the active interface.
//
// The returned error, when non-nil, is a *types.ParseError carrying the
// failure class; the caller supplies document and line context.
func Parse(kind types.SymbolKind, sig string, scope types.Scope, inline bool) (*types.Signature, error) {
	if err := checkNesting(kind, scope, inline); err != nil {
		return nil, err
	}

	m := sigRe.FindStringSubmatchIndex(sig)
	if m == nil {
		return nil, parseErr(types.ErrMalformedSignature, "invalid signature %q", sig)
	}

	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return sig[m[2*i]:m[2*i+1]]
	}

	parsed := &types.Signature{
		Prefix:    strings.TrimSuffix(group(1), "."),
		Name:      group(2),
		Return:    strings.TrimSpace(group(4)),
		HasParens: m[6] >= 0, // group 3 present means parentheses were given
	}

	if parsed.HasParens {
		params, err := splitParams(group(3))
		if err != nil {
			return nil, err
		}
		parsed.Params = params
	}

	fullname, err := qualify(parsed.Prefix, parsed.Name, scope)
	if err != nil {
		return nil, err
	}
	parsed.FullName = fullname

	return parsed, nil
}

// checkNesting rejects symbol kinds that are not permitted in the
// current scope context
func checkNesting(kind types.SymbolKind, scope types.Scope, inline bool) error {
	if scope.Interface != "" && interfaceForbidden[kind] {
		return parseErr(types.ErrInvalidNesting,
			"%s not permitted inside interface %s", kind, scope.Interface)
	}
	if inline && scope.Contract != "" && scope.Interface == "" && contractInlineForbidden[kind] {
		return parseErr(types.ErrInvalidNesting,
			"%s not permitted inside contract block %s; declare it at top level under currentcontract", kind, scope.Contract)
	}
	if kind == types.KindContract && inline {
		return parseErr(types.ErrInvalidNesting, "contract blocks cannot be nested")
	}
	if kind == types.KindInterface && scope.Interface != "" {
		return parseErr(types.ErrInvalidNesting, "interface blocks cannot be nested")
	}
	return nil
}

// qualify computes the fully qualified registration name from the owner
// prefix and the active scope.
//
// Inside an interface block the symbol is qualified by the interface name
// and an explicit prefix must name that interface. Under a contract scope
// a prefix either restates the contract (and is used as-is) or names a
// nested owner, which is qualified by the contract.
func qualify(prefix, name string, scope types.Scope) (string, error) {
	if scope.Interface != "" {
		if prefix != "" && prefix != scope.Interface {
			return "", parseErr(types.ErrMalformedSignature,
				"prefix %q does not match enclosing interface %q", prefix, scope.Interface)
		}
		return scope.Interface + "." + name, nil
	}

	if scope.Contract != "" {
		switch {
		case prefix == "":
			return scope.Contract + "." + name, nil
		case prefix == scope.Contract, strings.HasPrefix(prefix, scope.Contract+"."):
			return prefix + "." + name, nil
		default:
			return scope.Contract + "." + prefix + "." + name, nil
		}
	}

	if prefix != "" {
		return prefix + "." + name, nil
	}
	return name, nil
}

// splitParams splits a raw argument list into individual parameter
// descriptors. Commas nested in brackets do not split, so types such as
// "HashMap[address, uint256]" survive intact.
func splitParams(args string) ([]types.Param, error) {
	params := make([]types.Param, 0)
	if strings.TrimSpace(args) == "" {
		return params, nil
	}

	depth := 0
	start := 0
	var rawParts []string
	for i, r := range args {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, parseErr(types.ErrMalformedSignature, "unbalanced brackets in argument list %q", args)
			}
		case ',':
			if depth == 0 {
				rawParts = append(rawParts, args[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, parseErr(types.ErrMalformedSignature, "unbalanced brackets in argument list %q", args)
	}
	rawParts = append(rawParts, args[start:])

	for _, raw := range rawParts {
		p, err := parseParam(raw)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

// parseParam parses one parameter descriptor of the form
// "name [: type] [= default]"
func parseParam(raw string) (types.Param, error) {
	var p types.Param

	rest := raw
	if i := indexTopLevel(rest, '='); i >= 0 {
		p.Default = strings.TrimSpace(rest[i+1:])
		rest = rest[:i]
	}
	if i := indexTopLevel(rest, ':'); i >= 0 {
		p.Type = strings.TrimSpace(rest[i+1:])
		rest = rest[:i]
	}
	p.Name = strings.TrimSpace(rest)

	if p.Name == "" {
		return p, parseErr(types.ErrMalformedSignature, "empty parameter in %q", raw)
	}
	return p, nil
}

// indexTopLevel returns the index of the first occurrence of sep outside
// any bracket nesting, or -1
func indexTopLevel(s string, sep rune) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseErr builds a *types.ParseError without document context; the
// document parser fills in DocID and Line
func parseErr(kind types.ErrorKind, format string, args ...interface{}) error {
	return &types.ParseError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}
