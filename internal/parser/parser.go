package parser

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/vyperlang/vydoc/internal/signature"
	"github.com/vyperlang/vydoc/pkg/types"
)

var (
	// directiveRe matches a directive marker line, already dedented to
	// its level: ".. vy:function:: transfer(...)"
	directiveRe = regexp.MustCompile(`^\.\.\s+vy:(\w+)::\s*(.*)$`)

	// fieldRe matches both option lines (":noindex:", ":synopsis: text")
	// and field-list lines (":param to: recipient")
	fieldRe = regexp.MustCompile(`^:([\w-]+)(?:\s+([^:]+))?:\s*(.*)$`)

	// roleRe matches inline cross-reference roles: :vy:func:`Token.transfer`
	roleRe = regexp.MustCompile(":vy:(\\w+):`([^`]+)`")
)

// directiveKinds maps directive names to their symbol kind
var directiveKinds = map[string]types.SymbolKind{
	"contract":  types.KindContract,
	"interface": types.KindInterface,
	"event":     types.KindEvent,
	"enum":      types.KindEnum,
	"struct":    types.KindStruct,
	"constant":  types.KindConstant,
	"immutable": types.KindImmutable,
	"statevar":  types.KindStateVar,
	"function":  types.KindFunction,
}

// currentContractDirective re-scopes subsequent top-level directives; the
// argument "None" clears the active contract
const currentContractDirective = "currentcontract"

// Parser parses vydoc documentation source files into symbols, contract
// registrations, references, and output nodes
type Parser struct {
	addContractNames bool
	logger           *zap.Logger
}

// New creates a Parser. addContractNames controls whether fully-qualified
// owner prefixes are rendered in signatures.
func New(addContractNames bool, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		addContractNames: addContractNames,
		logger:           logger,
	}
}

// line carries one source line with its original 1-based number
type line struct {
	text string
	num  int
}

// ParseDocument parses one documentation source file. All failures are
// recoverable: an offending block is skipped with a recorded error and
// the rest of the document continues processing.
func (p *Parser) ParseDocument(docID string, content []byte) *types.ParseResult {
	res := &types.ParseResult{DocID: docID}

	raw := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	lines := make([]line, len(raw))
	for i, text := range raw {
		lines[i] = line{text: text, num: i + 1}
	}

	scope := &scopeStack{}
	res.Nodes = p.parseLevel(lines, scope, false, res)
	return res
}

// parseLevel processes lines already dedented to a common level: directive
// markers at indent zero begin blocks, everything else is prose scanned
// for inline references. The inline flag reports whether this level sits
// inside a directive body.
func (p *Parser) parseLevel(lines []line, scope *scopeStack, inline bool, res *types.ParseResult) []*types.Node {
	var nodes []*types.Node

	i := 0
	for i < len(lines) {
		ln := lines[i]
		if m := directiveRe.FindStringSubmatch(ln.text); m != nil {
			body, next := blockExtent(lines, i+1)
			node := p.processDirective(m[1], strings.TrimSpace(m[2]), ln.num, dedent(body), scope, inline, res)
			if node != nil {
				nodes = append(nodes, node)
			}
			i = next
			continue
		}

		p.collectReferences(ln, scope.current(), res)
		i++
	}

	return nodes
}

// processDirective handles one directive block. A nil return means the
// block produced no node: either it was skipped on error or it is a pure
// scoping directive.
func (p *Parser) processDirective(name, arg string, markerLine int, body []line, scope *scopeStack, inline bool, res *types.ParseResult) *types.Node {
	if name == currentContractDirective {
		p.applyCurrentContract(arg, markerLine, scope, inline, res)
		return nil
	}

	kind, ok := directiveKinds[name]
	if !ok {
		res.AddError(markerLine, types.ErrMalformedSignature, "unknown directive vy:"+name)
		return nil
	}

	sig, err := signature.Parse(kind, arg, scope.current(), inline)
	if err != nil {
		p.recordError(err, markerLine, res)
		return nil
	}

	node := &types.Node{
		Kind:     kind,
		FullName: sig.FullName,
		Display:  p.display(sig),
		Options:  make(map[string]string),
		Line:     markerLine,
	}

	content, ok := p.applyOptions(node, kind, body, scope.current(), res)
	if !ok {
		return nil
	}

	// Contract and interface bodies introduce scope for their nested
	// directives; a contract additionally stays active for subsequent
	// top-level blocks, matching currentcontract semantics.
	switch kind {
	case types.KindContract:
		scope.setContract(sig.FullName)
		node.Children = p.parseLevel(content, scope, true, res)
	case types.KindInterface:
		if err := scope.pushInterface(sig.Name); err != nil {
			res.AddError(markerLine, types.ErrInvalidNesting, err.Error())
			return nil
		}
		node.Children = p.parseLevel(content, scope, true, res)
		scope.pop()
	default:
		node.Children = p.parseLevel(content, scope, true, res)
	}

	if !node.HasFlag("noindex") {
		anchor := MakeAnchor(kind, sig.FullName)
		node.Anchor = anchor

		res.Symbols = append(res.Symbols, types.SymbolEntry{
			FullName: sig.FullName,
			Kind:     kind,
			Anchor:   anchor,
			DocID:    res.DocID,
			Aliased:  node.HasFlag("alias"),
		})

		if kind == types.KindContract {
			res.Contracts = append(res.Contracts, types.ContractEntry{
				Name:       sig.FullName,
				DocID:      res.DocID,
				Anchor:     anchor,
				Synopsis:   node.Option("synopsis"),
				Platform:   node.Option("platform"),
				Deprecated: node.HasFlag("deprecated"),
			})
		}
	}

	return node
}

// applyCurrentContract implements the re-scoping pseudo-directive
func (p *Parser) applyCurrentContract(arg string, markerLine int, scope *scopeStack, inline bool, res *types.ParseResult) {
	if inline {
		res.AddError(markerLine, types.ErrInvalidNesting, "currentcontract must appear at document top level")
		return
	}
	if arg == "None" {
		scope.clear()
		return
	}
	if arg == "" {
		res.AddError(markerLine, types.ErrMalformedSignature, "currentcontract requires a contract name or None")
		return
	}
	scope.setContract(arg)
}

// applyOptions consumes option and field-list lines from the block body,
// returning the remaining content lines. A false return means the block
// must be skipped (invalid option choice).
func (p *Parser) applyOptions(node *types.Node, kind types.SymbolKind, body []line, scope types.Scope, res *types.ParseResult) ([]line, bool) {
	spec := optionSpecs[kind]
	var content []line
	var bodyText []string
	lastField := -1

	for _, ln := range body {
		trimmed := strings.TrimSpace(ln.text)
		ind := leadingIndent(ln.text)

		// Options and field lists live at the block's own level; deeper
		// indentation belongs to field continuations or nested blocks
		var m []string
		if ind == 0 {
			m = fieldRe.FindStringSubmatch(trimmed)
			if m != nil && m[1] == "vy" {
				// An inline role at line start, not an option
				m = nil
			}
		}

		if m == nil {
			if ind > 0 && lastField >= 0 && trimmed != "" {
				f := &node.Fields[lastField]
				f.Body = strings.TrimSpace(f.Body + " " + trimmed)
				continue
			}
			if ind == 0 || trimmed == "" {
				lastField = -1
			}
			content = append(content, ln)
			if ind == 0 && trimmed != "" && !strings.HasPrefix(trimmed, ".. ") {
				bodyText = append(bodyText, trimmed)
			}
			continue
		}

		name, fieldArg, value := m[1], strings.TrimSpace(m[2]), m[3]

		switch {
		case fieldArg == "" && spec.allowsFlag(name) && value == "":
			node.Flags = append(node.Flags, name)
			lastField = -1
		case fieldArg == "" && spec.allowsValue(name):
			if !spec.allowsChoice(name, value) {
				res.AddError(ln.num, types.ErrMalformedSignature,
					"invalid value "+value+" for option :"+name+":")
				return nil, false
			}
			node.Options[name] = value
			lastField = -1
		case fieldKinds[name] != "":
			node.Fields = append(node.Fields, types.Field{
				Kind: fieldKinds[name],
				Arg:  fieldArg,
				Body: value,
			})
			lastField = len(node.Fields) - 1
			p.collectReferences(ln, scope, res)
		default:
			p.logger.Warn("unknown directive option",
				zap.String("option", name),
				zap.String("directive", string(kind)),
				zap.String("document", res.DocID),
				zap.Int("line", ln.num))
			lastField = -1
		}
	}

	node.Body = strings.Join(bodyText, "\n")
	return content, true
}

// collectReferences scans one prose line for inline role invocations
func (p *Parser) collectReferences(ln line, scope types.Scope, res *types.ParseResult) {
	for _, m := range roleRe.FindAllStringSubmatch(ln.text, -1) {
		role := types.Role(m[1])
		if role.Kinds() == nil {
			p.logger.Warn("unknown reference role",
				zap.String("role", m[1]),
				zap.String("document", res.DocID),
				zap.Int("line", ln.num))
			continue
		}
		res.References = append(res.References, types.Reference{
			Target: m[2],
			Role:   role,
			Scope:  scope,
			DocID:  res.DocID,
			Line:   ln.num,
		})
	}
}

// recordError attaches document context to a signature parse failure
func (p *Parser) recordError(err error, markerLine int, res *types.ParseResult) {
	if pe, ok := err.(*types.ParseError); ok {
		res.AddError(markerLine, pe.Kind, pe.Message)
	} else {
		res.AddError(markerLine, types.ErrMalformedSignature, err.Error())
	}
	p.logger.Warn("directive skipped",
		zap.String("document", res.DocID),
		zap.Int("line", markerLine),
		zap.Error(err))
}

// display renders the signature for output, honoring the configuration
// switch for fully-qualified owner prefixes
func (p *Parser) display(sig *types.Signature) string {
	shown := types.Signature{
		Name:      sig.Name,
		Params:    sig.Params,
		Return:    sig.Return,
		HasParens: sig.HasParens,
	}
	if p.addContractNames {
		shown.Name = sig.FullName
	}
	return shown.String()
}

// blockExtent returns the lines belonging to a block starting after its
// marker: every following line that is blank or indented. next is the
// index of the first line after the block.
func blockExtent(lines []line, start int) (body []line, next int) {
	end := start
	lastContent := start
	for end < len(lines) {
		t := lines[end].text
		if strings.TrimSpace(t) == "" {
			end++
			continue
		}
		if leadingIndent(t) == 0 {
			break
		}
		end++
		lastContent = end
	}
	return lines[start:lastContent], end
}

// dedent strips the common leading indentation from a block body
func dedent(body []line) []line {
	min := -1
	for _, ln := range body {
		if strings.TrimSpace(ln.text) == "" {
			continue
		}
		if ind := leadingIndent(ln.text); min < 0 || ind < min {
			min = ind
		}
	}
	if min <= 0 {
		return body
	}
	out := make([]line, len(body))
	for i, ln := range body {
		text := ln.text
		if len(text) >= min {
			text = text[min:]
		} else {
			text = strings.TrimSpace(text)
		}
		out[i] = line{text: text, num: ln.num}
	}
	return out
}

// leadingIndent counts leading spaces, treating tabs as expanded
func leadingIndent(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 8 - n%8
		default:
			return n
		}
	}
	return n
}

// MakeAnchor builds the stable anchor identifier a symbol registers under
func MakeAnchor(kind types.SymbolKind, fullname string) string {
	slug := strings.ToLower(strings.NewReplacer(".", "-", "_", "-").Replace(fullname))
	return "vy-" + string(kind) + "-" + slug
}
