package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyperlang/vydoc/pkg/types"
)

func parse(t *testing.T, content string) *types.ParseResult {
	t.Helper()
	return New(false, nil).ParseDocument("test.rst", []byte(content))
}

func findSymbol(res *types.ParseResult, fullname string) (types.SymbolEntry, bool) {
	for _, s := range res.Symbols {
		if s.FullName == fullname {
			return s, true
		}
	}
	return types.SymbolEntry{}, false
}

func TestParseDocument_ContractRegisters(t *testing.T) {
	res := parse(t, `.. vy:contract:: Token
   :synopsis: ERC20 token implementation
   :platform: mainnet
`)

	require.False(t, res.HasErrors(), "errors: %v", res.Errors)

	sym, ok := findSymbol(res, "Token")
	require.True(t, ok)
	assert.Equal(t, types.KindContract, sym.Kind)
	assert.Equal(t, "vy-contract-token", sym.Anchor)

	require.Len(t, res.Contracts, 1)
	c := res.Contracts[0]
	assert.Equal(t, "Token", c.Name)
	assert.Equal(t, "ERC20 token implementation", c.Synopsis)
	assert.Equal(t, "mainnet", c.Platform)
	assert.False(t, c.Deprecated)
}

func TestParseDocument_NestedFunctionQualified(t *testing.T) {
	res := parse(t, `.. vy:contract:: Token

   .. vy:function:: transfer(to: address, amount: uint256) -> bool
      :mutability: nonpayable
      :visibility: external

      :param to: recipient address
      :param amount: amount to move
      :returns: success flag
`)

	require.False(t, res.HasErrors(), "errors: %v", res.Errors)

	sym, ok := findSymbol(res, "Token.transfer")
	require.True(t, ok)
	assert.Equal(t, types.KindFunction, sym.Kind)

	require.Len(t, res.Nodes, 1)
	contract := res.Nodes[0]
	require.Len(t, contract.Children, 1)
	fn := contract.Children[0]
	assert.Equal(t, "Token.transfer", fn.FullName)
	assert.Equal(t, "nonpayable", fn.Option("mutability"))
	assert.Equal(t, "external", fn.Option("visibility"))

	require.Len(t, fn.Fields, 3)
	assert.Equal(t, types.Field{Kind: types.FieldParam, Arg: "to", Body: "recipient address"}, fn.Fields[0])
	assert.Equal(t, types.Field{Kind: types.FieldParam, Arg: "amount", Body: "amount to move"}, fn.Fields[1])
	assert.Equal(t, types.FieldReturns, fn.Fields[2].Kind)
}

func TestParseDocument_CurrentContractScopesTopLevel(t *testing.T) {
	res := parse(t, `.. vy:currentcontract:: Token

.. vy:function:: burn(amount: uint256)
`)

	require.False(t, res.HasErrors(), "errors: %v", res.Errors)
	_, ok := findSymbol(res, "Token.burn")
	assert.True(t, ok)
}

func TestParseDocument_CurrentContractNoneClears(t *testing.T) {
	res := parse(t, `.. vy:contract:: Token

.. vy:currentcontract:: None

.. vy:function:: foo()
`)

	require.False(t, res.HasErrors(), "errors: %v", res.Errors)

	_, ok := findSymbol(res, "foo")
	assert.True(t, ok, "registers bare, not Token.foo")
	_, ok = findSymbol(res, "Token.foo")
	assert.False(t, ok)
}

func TestParseDocument_InterfaceScope(t *testing.T) {
	res := parse(t, `.. vy:contract:: Token

   .. vy:interface:: ERC20

      .. vy:function:: balanceOf(owner: address) -> uint256
`)

	require.False(t, res.HasErrors(), "errors: %v", res.Errors)

	_, ok := findSymbol(res, "Token.ERC20")
	assert.True(t, ok, "interface qualified under its contract")
	_, ok = findSymbol(res, "ERC20.balanceOf")
	assert.True(t, ok, "members qualified by the interface name")
}

func TestParseDocument_StateVarInInterfaceSkipped(t *testing.T) {
	res := parse(t, `.. vy:contract:: Token

   .. vy:interface:: ERC20

      .. vy:statevar:: totalSupply
         :type: uint256

      .. vy:function:: balanceOf(owner: address) -> uint256
`)

	require.True(t, res.HasErrors())
	assert.Equal(t, types.ErrInvalidNesting, res.Errors[0].Kind)

	_, ok := findSymbol(res, "ERC20.totalSupply")
	assert.False(t, ok, "bad block registers nothing")
	_, ok = findSymbol(res, "ERC20.balanceOf")
	assert.True(t, ok, "rest of the document still processed")
}

func TestParseDocument_InlineEventInContractSkipped(t *testing.T) {
	res := parse(t, `.. vy:contract:: Token

   .. vy:event:: Transfer(sender: address)
`)

	require.True(t, res.HasErrors())
	assert.Equal(t, types.ErrInvalidNesting, res.Errors[0].Kind)
}

func TestParseDocument_TopLevelEventUnderCurrentContract(t *testing.T) {
	res := parse(t, `.. vy:currentcontract:: Token

.. vy:event:: Transfer(sender: address, receiver: address)

   :topic: sender
   :topic: receiver
`)

	require.False(t, res.HasErrors(), "errors: %v", res.Errors)

	sym, ok := findSymbol(res, "Token.Transfer")
	require.True(t, ok)
	assert.Equal(t, types.KindEvent, sym.Kind)
}

func TestParseDocument_NoIndexSuppressesRegistration(t *testing.T) {
	res := parse(t, `.. vy:contract:: Scratch
   :noindex:
`)

	require.False(t, res.HasErrors(), "errors: %v", res.Errors)
	assert.Empty(t, res.Symbols)
	assert.Empty(t, res.Contracts)
	require.Len(t, res.Nodes, 1)
	assert.Empty(t, res.Nodes[0].Anchor)
}

func TestParseDocument_AliasFlagged(t *testing.T) {
	res := parse(t, `.. vy:currentcontract:: Token

.. vy:function:: transfer(to: address)
   :alias:
`)

	sym, ok := findSymbol(res, "Token.transfer")
	require.True(t, ok)
	assert.True(t, sym.Aliased)
}

func TestParseDocument_InvalidMutabilitySkipsBlock(t *testing.T) {
	res := parse(t, `.. vy:function:: pay()
   :mutability: sometimes
`)

	require.True(t, res.HasErrors())
	assert.Equal(t, types.ErrMalformedSignature, res.Errors[0].Kind)
	assert.Empty(t, res.Symbols)
}

func TestParseDocument_MalformedSignatureSkipsAndContinues(t *testing.T) {
	res := parse(t, `.. vy:function:: not a signature

.. vy:function:: fine()
`)

	require.True(t, res.HasErrors())
	assert.Equal(t, types.ErrMalformedSignature, res.Errors[0].Kind)

	_, ok := findSymbol(res, "fine")
	assert.True(t, ok)
}

func TestParseDocument_CollectsReferences(t *testing.T) {
	res := parse(t, `.. vy:contract:: Token

   See :vy:func:` + "`transfer`" + ` and :vy:event:` + "`.Transfer`" + `.
`)

	require.Len(t, res.References, 2)

	ref := res.References[0]
	assert.Equal(t, "transfer", ref.Target)
	assert.Equal(t, types.RoleFunction, ref.Role)
	assert.Equal(t, "Token", ref.Scope.Contract, "reference carries the enclosing scope")

	assert.Equal(t, ".Transfer", res.References[1].Target)
}

func TestParseDocument_ReferenceInFieldBody(t *testing.T) {
	res := parse(t, `.. vy:currentcontract:: Token

.. vy:function:: transfer(to: address)

   :returns: see :vy:event:` + "`Transfer`" + `
`)

	require.Len(t, res.References, 1)
	assert.Equal(t, "Transfer", res.References[0].Target)
}

func TestParseDocument_FieldContinuationLines(t *testing.T) {
	res := parse(t, `.. vy:function:: transfer(to: address)

   :param to: recipient address,
      checksummed
`)

	require.Len(t, res.Nodes, 1)
	fields := res.Nodes[0].Fields
	require.Len(t, fields, 1)
	assert.Equal(t, "recipient address, checksummed", fields[0].Body)
}

func TestParseDocument_DisplayHonorsContractNamesSwitch(t *testing.T) {
	src := `.. vy:contract:: Token

   .. vy:function:: transfer(to: address) -> bool
`

	res := New(false, nil).ParseDocument("t.rst", []byte(src))
	require.Len(t, res.Nodes, 1)
	require.Len(t, res.Nodes[0].Children, 1)
	assert.Equal(t, "transfer(to: address) -> bool", res.Nodes[0].Children[0].Display)

	res = New(true, nil).ParseDocument("t.rst", []byte(src))
	assert.Equal(t, "Token.transfer(to: address) -> bool", res.Nodes[0].Children[0].Display)
}

func TestParseDocument_ConstantOptions(t *testing.T) {
	res := parse(t, `.. vy:constant:: DECIMALS
   :type: uint8
   :value: 18
`)

	require.False(t, res.HasErrors(), "errors: %v", res.Errors)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, "uint8", res.Nodes[0].Option("type"))
	assert.Equal(t, "18", res.Nodes[0].Option("value"))
}

func TestParseDocument_DeprecatedContract(t *testing.T) {
	res := parse(t, `.. vy:contract:: LegacyToken
   :deprecated:
   :synopsis: superseded by Token
`)

	require.Len(t, res.Contracts, 1)
	assert.True(t, res.Contracts[0].Deprecated)
}

func TestMakeAnchor(t *testing.T) {
	assert.Equal(t, "vy-function-token-transfer", MakeAnchor(types.KindFunction, "Token.transfer"))
	assert.Equal(t, "vy-contract-token", MakeAnchor(types.KindContract, "Token"))
}
