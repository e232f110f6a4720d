// Package parser extracts symbols, contract registrations, references,
// and output nodes from vydoc documentation source files.
//
// Source files use a reST-flavoured block syntax. A directive marker
// introduces a documented construct; indented lines carry its options,
// field lists, prose, and nested directives:
//
//	.. vy:contract:: Token
//	   :synopsis: ERC20 token implementation
//
//	   Transfers are described by :vy:event:`Transfer`.
//
//	   .. vy:function:: transfer(to: address, amount: uint256) -> bool
//	      :mutability: nonpayable
//	      :visibility: external
//
//	      :param to: recipient address
//	      :param amount: amount to move
//	      :returns: success flag
//
// Entering a contract or interface body pushes a scope frame that
// qualifies nested signatures; "vy:currentcontract::" re-scopes
// subsequent top-level blocks, and the argument None clears the scope.
//
// # Error Handling
//
// The parser handles bad blocks gracefully: a malformed signature or a
// kind in a forbidden nesting position skips that block with a recorded
// ParseError while the rest of the document continues. Inline roles
// (:vy:func:`target` and friends) are collected for resolution after the
// merge phase rather than resolved during parsing.
package parser
