// Package signature parses the one-line signatures carried by vydoc
// directives into structured form.
//
// The grammar is intentionally small:
//
//	[<prefix> "."] <identifier> ["(" <args> ")" ["->" <return>]]
//
// # Basic Usage
//
//	sig, err := signature.Parse(types.KindFunction,
//	    "transfer(to: address, amount: uint256) -> bool",
//	    types.Scope{Contract: "Token"}, true)
//	// sig.FullName == "Token.transfer"
//	// sig.Params   == [{to address} {amount uint256}]
//	// sig.Return   == "bool"
//
// Each parameter descriptor may carry a name, a type annotation introduced
// by ":", and a default value introduced by "=". Commas nested inside
// brackets do not split parameters, so generic types like
// "HashMap[address, uint256]" parse correctly.
//
// # Qualification
//
// The fully qualified registration name combines the active scope with the
// signature's own prefix. Inside an interface block the interface name
// qualifies the symbol and an explicit prefix must restate it; under a
// contract scope a foreign prefix is nested beneath the contract.
//
// # Nesting Rules
//
// State variables, immutables, and constants are rejected inside interface
// blocks. Constants, enums, and events are rejected when lexically nested
// in a contract body; they belong at document top level under a
// currentcontract scope. Nesting validity is checked before prefix
// matching, so a block that violates both reports invalid nesting.
//
// All failures are recoverable *types.ParseError values; callers skip the
// offending block and continue with the rest of the document.
package signature
