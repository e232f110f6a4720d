// Package resolver implements cross-reference resolution over the symbol
// table.
//
// Exact mode walks the scope-qualified candidate chain
// (contract.interface.name, interface.name, contract.name, bare name) and
// returns the first registered symbol whose kind the role allows. Fuzzy
// mode, used for generic references and for targets with a leading ".",
// falls back to a suffix search across every registered symbol.
//
// Results are memoized in an LRU cache keyed by the registry generation,
// so registry mutations invalidate stale entries without coordination.
package resolver
