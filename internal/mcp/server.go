package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/vyperlang/vydoc/internal/builder"
	"github.com/vyperlang/vydoc/internal/config"
	"github.com/vyperlang/vydoc/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "vydoc-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	storage storage.Storage
	logger  *zap.Logger

	// builder holds the session of the most recently indexed project.
	mu      sync.RWMutex
	builder *builder.Builder
}

// NewServer creates a new MCP server instance
func NewServer(dbPath string, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir := filepath.Join(home, ".vydoc", "indices")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dbPath = filepath.Join(dir, "vydoc.db")
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		storage: store,
		logger:  logger,
		builder: builder.New(store, config.Default(), logger),
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexDocsTool(), s.handleIndexDocs)
	s.mcp.AddTool(lookupSymbolTool(), s.handleLookupSymbol)
	s.mcp.AddTool(resolveReferenceTool(), s.handleResolveReference)
	s.mcp.AddTool(searchSymbolsTool(), s.handleSearchSymbols)
	s.mcp.AddTool(contractIndexTool(), s.handleContractIndex)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

// currentBuilder returns the builder for the active session
func (s *Server) currentBuilder() *builder.Builder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.builder
}

// setBuilder swaps in the builder of a freshly indexed project
func (s *Server) setBuilder(b *builder.Builder) {
	s.mu.Lock()
	s.builder = b
	s.mu.Unlock()
}
