package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vyperlang/vydoc/internal/builder"
	"github.com/vyperlang/vydoc/internal/config"
	"github.com/vyperlang/vydoc/internal/storage"
	"github.com/vyperlang/vydoc/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeProjectNotFound = -32001 // Specified path is not an indexed documentation tree
	ErrorCodeBuildInProgress = -32002 // Another build is already running
	ErrorCodeNotIndexed      = -32003 // No build session available
	ErrorCodeSymbolNotFound  = -32005 // Requested symbol is not registered
)

// handleIndexDocs handles the index_docs tool invocation
func (s *Server) handleIndexDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	forceRebuild, _ := args["force_rebuild"].(bool)
	if forceRebuild {
		if err := s.dropStoredDocuments(ctx, path); err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to reset project", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid project configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	b := builder.New(s.storage, cfg, s.logger)
	stats, err := b.BuildProject(ctx, path)
	if errors.Is(err, builder.ErrBuildInProgress) {
		return nil, newMCPError(ErrorCodeBuildInProgress, "a build is already in progress", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "build failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.setBuilder(b)

	response := map[string]interface{}{
		"indexed":      true,
		"docs_parsed":  stats.DocsParsed,
		"docs_skipped": stats.DocsSkipped,
		"docs_failed":  stats.DocsFailed,
		"symbols":      stats.Symbols,
		"contracts":    stats.Contracts,
		"references":   stats.References,
		"unresolved":   stats.Unresolved,
		"warnings":     stats.Warnings,
		"duration_ms":  stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// dropStoredDocuments deletes every stored document of a project so the
// next build re-parses from scratch
func (s *Server) dropStoredDocuments(ctx context.Context, path string) error {
	project, err := s.storage.GetProject(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	docs, err := s.storage.ListDocuments(ctx, project.ID)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.storage.DeleteDocument(ctx, doc.ID); err != nil {
			return err
		}
	}
	return nil
}

// handleLookupSymbol handles the lookup_symbol tool invocation
func (s *Server) handleLookupSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	fullname, ok := args["fullname"].(string)
	if !ok || fullname == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "fullname parameter is required", map[string]interface{}{
			"param":  "fullname",
			"reason": "missing or empty",
		})
	}

	session := s.currentBuilder().Session()
	if session == nil {
		return nil, newMCPError(ErrorCodeNotIndexed, "no documentation indexed, run index_docs first", nil)
	}

	entry, found := session.LookupSymbol(fullname)
	if !found {
		return nil, newMCPError(ErrorCodeSymbolNotFound, "symbol not found", map[string]interface{}{
			"fullname": fullname,
		})
	}

	return mcp.NewToolResultText(formatJSON(symbolResponse(entry))), nil
}

// handleResolveReference handles the resolve_reference tool invocation
func (s *Server) handleResolveReference(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	target, ok := args["target"].(string)
	if !ok || target == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "target parameter is required", map[string]interface{}{
			"param":  "target",
			"reason": "missing or empty",
		})
	}

	role := types.Role(getStringDefault(args, "role", string(types.RoleObj)))
	if role.Kinds() == nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "unknown role", map[string]interface{}{
			"param": "role",
			"value": string(role),
		})
	}

	scope := types.Scope{
		Contract:  getStringDefault(args, "contract", ""),
		Interface: getStringDefault(args, "interface", ""),
	}
	fuzzy, _ := args["fuzzy"].(bool)

	res := s.currentBuilder().Resolver()
	if res == nil {
		return nil, newMCPError(ErrorCodeNotIndexed, "no documentation indexed, run index_docs first", nil)
	}

	var matches []types.Match
	if fuzzy {
		matches = res.ResolveFuzzy(target, role, scope)
	} else if m, found := res.Resolve(target, role, scope); found {
		matches = []types.Match{m}
	}

	results := make([]map[string]interface{}, 0, len(matches))
	for _, m := range matches {
		r := symbolResponse(m.Entry)
		r["title"] = m.Title
		results = append(results, r)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"target":  target,
		"role":    string(role),
		"matches": results,
	})), nil
}

// handleSearchSymbols handles the search_symbols tool invocation
func (s *Server) handleSearchSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	kinds, err := parseKinds(args["kinds"])
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{
			"param": "kinds",
		})
	}

	session := s.currentBuilder().Session()
	if session == nil {
		return s.searchStored(ctx, args, query, kinds, limit)
	}

	matches := make([]types.SymbolEntry, 0, limit)
	if entry, found := session.LookupSymbol(query); found && kindAllowed(entry.Kind, kinds) {
		matches = append(matches, entry)
	}
	matches = append(matches, session.SuffixSearch(query, kinds)...)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]map[string]interface{}, 0, len(matches))
	for _, entry := range matches {
		results = append(results, symbolResponse(entry))
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"results": results,
	})), nil
}

// searchStored serves search_symbols from the persisted index when no
// build session is live, such as right after a server restart. The
// caller names the project root so the search hits the right index.
func (s *Server) searchStored(ctx context.Context, args map[string]interface{}, query string, kinds []types.SymbolKind, limit int) (*mcp.CallToolResult, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeNotIndexed, "no build session, run index_docs first or pass path to search a previously indexed project", nil)
	}

	project, err := s.storage.GetProject(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, newMCPError(ErrorCodeProjectNotFound, "project has not been indexed", map[string]interface{}{
				"path": path,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "failed to load project", map[string]interface{}{
			"error": err.Error(),
		})
	}

	docs, err := s.storage.ListDocuments(ctx, project.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list documents", map[string]interface{}{
			"error": err.Error(),
		})
	}
	docIDByRow := make(map[int64]string, len(docs))
	for _, doc := range docs {
		docIDByRow[doc.ID] = doc.DocID
	}

	rows, err := s.storage.SearchSymbols(ctx, project.ID, query, kinds, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "symbol search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		results = append(results, symbolResponse(row.Entry(docIDByRow[row.DocumentID])))
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"results": results,
	})), nil
}

// handleContractIndex handles the contract_index tool invocation
func (s *Server) handleContractIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	var docFilter map[string]bool
	if raw, ok := args["documents"].([]interface{}); ok && len(raw) > 0 {
		docFilter = make(map[string]bool, len(raw))
		for _, v := range raw {
			docID, ok := v.(string)
			if !ok {
				return nil, newMCPError(ErrorCodeInvalidParams, "documents must be strings", nil)
			}
			docFilter[docID] = true
		}
	}

	index, err := s.currentBuilder().ContractIndex(docFilter)
	if err != nil {
		return nil, newMCPError(ErrorCodeNotIndexed, "no documentation indexed, run index_docs first", nil)
	}

	groups := make([]map[string]interface{}, 0, len(index.Groups))
	for _, g := range index.Groups {
		entries := make([]map[string]interface{}, 0, len(g.Entries))
		for _, e := range g.Entries {
			entries = append(entries, map[string]interface{}{
				"name":       e.Name,
				"document":   e.DocID,
				"anchor":     e.Anchor,
				"platform":   e.Platform,
				"deprecated": e.Deprecated,
				"synopsis":   e.Synopsis,
			})
		}
		groups = append(groups, map[string]interface{}{
			"letter":  g.Letter,
			"entries": entries,
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"groups":   groups,
		"collapse": index.Collapse,
		"total":    index.Len(),
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	project, err := s.storage.GetProject(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"indexed": false,
			"path":    path,
			"message": "Documentation not indexed. Use index_docs tool to index this tree.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get project status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	status, err := s.storage.GetStatus(ctx, project.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed": true,
		"project": map[string]interface{}{
			"path":            status.RootPath,
			"index_version":   status.IndexVersion,
			"last_indexed_at": status.LastIndexedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		"statistics": map[string]interface{}{
			"documents_count": status.TotalDocuments,
			"symbols_count":   status.TotalSymbols,
			"contracts_count": status.TotalContracts,
			"warnings_count":  status.TotalWarnings,
			"index_size_mb":   fmt.Sprintf("%.2f", float64(status.DatabaseSize)/(1024*1024)),
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// symbolResponse formats a symbol entry for a tool result
func symbolResponse(entry types.SymbolEntry) map[string]interface{} {
	return map[string]interface{}{
		"fullname": entry.FullName,
		"kind":     string(entry.Kind),
		"document": entry.DocID,
		"anchor":   entry.Anchor,
		"aliased":  entry.Aliased,
	}
}

// parseKinds converts the raw kinds argument into symbol kinds
func parseKinds(raw interface{}) ([]types.SymbolKind, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, errors.New("kinds must be an array of strings")
	}

	kinds := make([]types.SymbolKind, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, errors.New("kinds must be an array of strings")
		}
		kind := types.SymbolKind(s)
		probe := types.SymbolEntry{Kind: kind}
		if err := probe.ValidateKind(); err != nil {
			return nil, fmt.Errorf("unknown symbol kind %q", s)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// kindAllowed reports whether a kind passes the optional filter
func kindAllowed(kind types.SymbolKind, kinds []types.SymbolKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// validatePath checks if a path is an absolute, readable directory
// containing documentation sources
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	hasDocFiles := false
	_ = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && (strings.HasSuffix(p, ".rst") || strings.HasSuffix(p, ".txt")) {
			hasDocFiles = true
		}
		return nil
	})

	if !hasDocFiles {
		return ErrNoDocFiles
	}

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoDocFiles      = errors.New("directory does not contain documentation sources")
)
