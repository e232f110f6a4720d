// Package mcp implements the Model Context Protocol (MCP) server for vydoc.
//
// The MCP server exposes the documentation index to AI coding assistants
// over a JSON-RPC 2.0 stdio transport:
//   - index_docs: Index a Vyper documentation tree
//   - lookup_symbol: Look up a symbol by fully qualified name
//   - resolve_reference: Resolve a cross-reference target with scope rules
//   - search_symbols: Search symbols by name or dotted suffix
//   - contract_index: Generate the grouped contract index
//   - get_status: Check indexing status and statistics
//
// # Protocol Overview
//
// The server reads MCP messages from stdin and writes responses to stdout,
// so all logging goes to stderr.
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// # Error Codes
//
// Tool failures use JSON-RPC style codes: -32602 invalid params, -32603
// internal error, -32001 project not found, -32002 build in progress,
// -32003 nothing indexed yet, -32005 symbol not found.
//
// # Sessions
//
// index_docs builds (or incrementally rebuilds) the index for one
// documentation root and keeps its symbol registry in memory; the lookup,
// resolution, search, and index tools operate against that session.
// get_status works directly against storage and needs no session.
package mcp
