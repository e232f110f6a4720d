package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vyperlang/vydoc/internal/registry"
	"github.com/vyperlang/vydoc/pkg/types"
)

func seed(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New(nil)

	entries := []types.SymbolEntry{
		{FullName: "Token", Kind: types.KindContract, Anchor: "contract-token", DocID: "api/token.rst"},
		{FullName: "Token.transfer", Kind: types.KindFunction, Anchor: "f1", DocID: "api/token.rst"},
		{FullName: "Token.Transfer", Kind: types.KindEvent, Anchor: "e1", DocID: "api/token.rst"},
		{FullName: "Token.ERC20.balanceOf", Kind: types.KindFunction, Anchor: "f2", DocID: "api/token.rst"},
		{FullName: "ERC20.balanceOf", Kind: types.KindFunction, Anchor: "f3", DocID: "api/erc20.rst"},
		{FullName: "Vault.Transfer", Kind: types.KindEvent, Anchor: "e2", DocID: "api/vault.rst"},
		{FullName: "Vault.deposit", Kind: types.KindFunction, Anchor: "f4", DocID: "api/vault.rst"},
		{FullName: "transfer", Kind: types.KindFunction, Anchor: "f5", DocID: "guide/free.rst"},
	}
	for _, e := range entries {
		r.RegisterSymbol(e)
	}
	return r
}

func TestResolve_CandidatePriority(t *testing.T) {
	r := New(seed(t), nil)

	// Interface scope: contract.interface.name wins over interface.name
	scope := types.Scope{Contract: "Token", Interface: "ERC20"}
	m, ok := r.Resolve("balanceOf", types.RoleFunction, scope)
	require.True(t, ok)
	assert.Equal(t, "Token.ERC20.balanceOf", m.Entry.FullName)

	// Without the contract, interface.name matches
	m, ok = r.Resolve("balanceOf", types.RoleFunction, types.Scope{Interface: "ERC20"})
	require.True(t, ok)
	assert.Equal(t, "ERC20.balanceOf", m.Entry.FullName)

	// Contract scope qualifies the bare name
	m, ok = r.Resolve("transfer", types.RoleFunction, types.Scope{Contract: "Token"})
	require.True(t, ok)
	assert.Equal(t, "Token.transfer", m.Entry.FullName)

	// No scope: bare name
	m, ok = r.Resolve("transfer", types.RoleFunction, types.Scope{})
	require.True(t, ok)
	assert.Equal(t, "transfer", m.Entry.FullName)
}

func TestResolve_KindFilter(t *testing.T) {
	r := New(seed(t), nil)

	// Token.transfer is a function and Token.Transfer an event; the role
	// decides which one a reference reaches
	m, ok := r.Resolve("Token.transfer", types.RoleFunction, types.Scope{})
	require.True(t, ok)
	assert.Equal(t, types.KindFunction, m.Entry.Kind)

	m, ok = r.Resolve("Token.Transfer", types.RoleEvent, types.Scope{})
	require.True(t, ok)
	assert.Equal(t, types.KindEvent, m.Entry.Kind)

	// Wrong kind for the role resolves to nothing
	_, ok = r.Resolve("Token.transfer", types.RoleEvent, types.Scope{})
	assert.False(t, ok)
}

func TestResolve_ContractOnlyExactBareName(t *testing.T) {
	r := New(seed(t), nil)

	m, ok := r.Resolve("Token", types.RoleContract, types.Scope{})
	require.True(t, ok)
	assert.Equal(t, "Token", m.Entry.FullName)

	// Contracts are never found via scope qualification or suffix: the
	// suffix scan yields nothing and only the exact fallback matches
	_, ok = r.Resolve("Token", types.RoleContract, types.Scope{Contract: "Outer"})
	assert.True(t, ok, "bare name still matches regardless of scope")

	matches := r.ResolveFuzzy(".Token", types.RoleContract, types.Scope{})
	require.Len(t, matches, 1)
	assert.Equal(t, "Token", matches[0].Entry.FullName)
}

func TestResolveFuzzy_SuffixFallback(t *testing.T) {
	r := New(seed(t), nil)

	matches := r.ResolveFuzzy("Transfer", types.RoleEvent, types.Scope{})

	require.Len(t, matches, 2)
	assert.Equal(t, "Token.Transfer", matches[0].Entry.FullName)
	assert.Equal(t, "Vault.Transfer", matches[1].Entry.FullName)
	for _, m := range matches {
		assert.Equal(t, types.KindEvent, m.Entry.Kind)
	}
}

func TestResolveFuzzy_ExactBeforeSuffix(t *testing.T) {
	r := New(seed(t), nil)

	// Exact match under the contract scope short-circuits the suffix scan
	matches := r.ResolveFuzzy("deposit", types.RoleObj, types.Scope{Contract: "Vault"})
	require.Len(t, matches, 1)
	assert.Equal(t, "Vault.deposit", matches[0].Entry.FullName)
}

func TestResolveFuzzy_LeadingDotForcesSuffixFirst(t *testing.T) {
	r := New(seed(t), nil)

	// "transfer" resolves exactly at top level, but ".transfer" forces the
	// suffix scan, surfacing the qualified definitions instead
	matches := r.ResolveFuzzy(".transfer", types.RoleFunction, types.Scope{})
	require.Len(t, matches, 1)
	assert.Equal(t, "Token.transfer", matches[0].Entry.FullName)
	assert.Equal(t, "transfer", matches[0].Title)
}

func TestDisplayTitles(t *testing.T) {
	r := New(seed(t), nil)

	m, ok := r.Resolve("Token.transfer", types.RoleFunction, types.Scope{})
	require.True(t, ok)
	assert.Equal(t, "Token.transfer", m.Title, "full dotted name displayed by default")

	m, ok = r.Resolve("~Token.transfer", types.RoleFunction, types.Scope{})
	require.True(t, ok)
	assert.Equal(t, "Token.transfer", m.Entry.FullName, "matched in full")
	assert.Equal(t, "transfer", m.Title, "tilde shows only the last component")
}

func TestResolveReference_UnresolvedWarnsAndDegrades(t *testing.T) {
	core, observed := observer.New(zap.WarnLevel)
	r := New(seed(t), zap.New(core))

	matches, ok := r.ResolveReference(types.Reference{
		Target: "NoSuchThing",
		Role:   types.RoleFunction,
		DocID:  "guide/broken.rst",
		Line:   12,
	})

	assert.False(t, ok)
	assert.Nil(t, matches)
	require.Equal(t, 1, observed.Len())
	fields := observed.All()[0].ContextMap()
	assert.Equal(t, "NoSuchThing", fields["target"])
	assert.Equal(t, "guide/broken.rst", fields["document"])
	assert.Equal(t, int64(12), fields["line"])
}

func TestResolveReference_GenericRoleUsesFuzzy(t *testing.T) {
	r := New(seed(t), nil)

	matches, ok := r.ResolveReference(types.Reference{
		Target: "Transfer",
		Role:   types.RoleObj,
	})

	require.True(t, ok)
	assert.Len(t, matches, 2, "obj role suffix-matches both events")
}

func TestCacheInvalidatedByRegistryMutation(t *testing.T) {
	reg := registry.New(nil)
	r := New(reg, nil)

	_, ok := r.Resolve("Token.burn", types.RoleFunction, types.Scope{})
	assert.False(t, ok)

	reg.RegisterSymbol(types.SymbolEntry{
		FullName: "Token.burn", Kind: types.KindFunction, Anchor: "f9", DocID: "a.rst",
	})

	// A fresh generation bypasses the cached miss
	m, ok := r.Resolve("Token.burn", types.RoleFunction, types.Scope{})
	require.True(t, ok)
	assert.Equal(t, "Token.burn", m.Entry.FullName)
}
