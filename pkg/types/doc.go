// Package types provides shared type definitions for vydoc.
//
// This package defines domain types used across the components of vydoc,
// including symbols, signatures, references, output nodes, and the
// generated contract index.
//
// # Core Types
//
// SymbolEntry represents a documented Vyper construct registered under its
// fully qualified dotted name:
//
//	entry := types.SymbolEntry{
//	    FullName: "Token.transfer",
//	    Kind:     types.KindFunction,
//	    Anchor:   "vy-function-token-transfer",
//	    DocID:    "api/token.rst",
//	}
//
// Signature is the structured form of a one-line directive signature such
// as "transfer(to: address, amount: uint256) -> bool", with the parameter
// list split into ordered Params and the return annotation preserved raw.
//
// Scope carries the contract/interface context used to qualify nested
// signatures; it is threaded explicitly through the parse call chain and
// never shared across documents.
//
// # References
//
// Reference records an inline role invocation for post-merge resolution.
// Raw targets may carry a leading "." (suffix-first lookup) or "~"
// (shortened display title); ParseTarget and DisplayTitle implement the
// modifier handling shared by the parser and resolver.
//
// # Errors
//
// ParseError classifies recoverable per-block failures (malformed
// signature, invalid nesting, duplicate definition, unresolved reference).
// All of them degrade output locally and never abort a build.
package types
