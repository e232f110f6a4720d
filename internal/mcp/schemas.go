package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexDocsTool returns the tool definition for index_docs
func indexDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_docs",
		Description: "Index a Vyper documentation tree to make its symbols searchable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the documentation root directory",
				},
				"force_rebuild": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-parse all documents ignoring content hashes (full rebuild)",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// lookupSymbolTool returns the tool definition for lookup_symbol
func lookupSymbolTool() mcp.Tool {
	return mcp.Tool{
		Name:        "lookup_symbol",
		Description: "Look up a documented symbol by its fully qualified name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"fullname": map[string]interface{}{
					"type":        "string",
					"description": "Fully qualified symbol name, e.g. 'Token.transfer'",
				},
			},
			Required: []string{"fullname"},
		},
	}
}

// resolveReferenceTool returns the tool definition for resolve_reference
func resolveReferenceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "resolve_reference",
		Description: "Resolve a cross-reference target the way an inline role would",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"target": map[string]interface{}{
					"type":        "string",
					"description": "Reference target, may carry a leading '.' (suffix match) or '~' (short title) modifier",
				},
				"role": map[string]interface{}{
					"type":        "string",
					"description": "Reference role constraining the symbol kind",
					"enum":        []string{"cont", "iface", "event", "enum", "struct", "const", "immut", "svar", "func", "obj"},
					"default":     "obj",
				},
				"contract": map[string]interface{}{
					"type":        "string",
					"description": "Active contract scope at the reference site",
				},
				"interface": map[string]interface{}{
					"type":        "string",
					"description": "Active interface scope at the reference site",
				},
				"fuzzy": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, fall back to suffix matching when no exact candidate resolves",
					"default":     false,
				},
			},
			Required: []string{"target"},
		},
	}
}

// searchSymbolsTool returns the tool definition for search_symbols
func searchSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_symbols",
		Description: "Search indexed symbols by name or dotted suffix",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Symbol name to match exactly or as a dotted suffix",
				},
				"kinds": map[string]interface{}{
					"type":        "array",
					"description": "Filter by symbol kind",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"contract", "interface", "event", "enum", "struct", "constant", "immutable", "statevar", "function"},
					},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Project root whose persisted index to search when no build session is live",
				},
			},
			Required: []string{"query"},
		},
	}
}

// contractIndexTool returns the tool definition for contract_index
func contractIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "contract_index",
		Description: "Generate the alphabetically grouped contract index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"documents": map[string]interface{}{
					"type":        "array",
					"description": "Restrict the index to contracts defined in these documents",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics for a documentation tree",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the documentation root",
				},
			},
			Required: []string{"path"},
		},
	}
}
