package storage

import (
	"context"
	"time"

	"github.com/vyperlang/vydoc/pkg/types"
)

// Storage defines the interface for persisting and querying indexed documentation data
type Storage interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, rootPath string) (*Project, error)
	GetProjectByID(ctx context.Context, projectID int64) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error

	// Document operations
	UpsertDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, projectID int64, docID string) (*Document, error)
	ListDocuments(ctx context.Context, projectID int64) ([]*Document, error)
	DeleteDocument(ctx context.Context, documentID int64) error

	// Symbol operations
	ReplaceSymbols(ctx context.Context, documentID int64, symbols []types.SymbolEntry) error
	ListSymbols(ctx context.Context, projectID int64) ([]*Symbol, error)
	SearchSymbols(ctx context.Context, projectID int64, name string, kinds []types.SymbolKind, limit int) ([]*Symbol, error)

	// Contract operations
	ReplaceContracts(ctx context.Context, documentID int64, contracts []types.ContractEntry) error
	ListContracts(ctx context.Context, projectID int64) ([]*Contract, error)

	// Status operations
	GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Project represents an indexed documentation tree
type Project struct {
	ID             int64
	RootPath       string
	IndexVersion   string
	TotalDocuments int
	TotalSymbols   int
	TotalWarnings  int
	LastIndexedAt  time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Document represents a single source document within a project
type Document struct {
	ID           int64
	ProjectID    int64
	DocID        string
	ContentHash  [32]byte
	SymbolCount  int
	WarningCount int
	ParsedAt     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Symbol is the persisted form of a registered object description
type Symbol struct {
	ID         int64
	DocumentID int64
	FullName   string
	Kind       string
	Anchor     string
	Aliased    bool
	CreatedAt  time.Time
}

// Entry converts a stored symbol row back to its registry form.
func (s *Symbol) Entry(docID string) types.SymbolEntry {
	return types.SymbolEntry{
		FullName: s.FullName,
		Kind:     types.SymbolKind(s.Kind),
		Anchor:   s.Anchor,
		DocID:    docID,
		Aliased:  s.Aliased,
	}
}

// Contract is the persisted form of a contract description
type Contract struct {
	ID         int64
	DocumentID int64
	Name       string
	Anchor     string
	Synopsis   string
	Platform   string
	Deprecated bool
	CreatedAt  time.Time
}

// Entry converts a stored contract row back to its registry form.
func (c *Contract) Entry(docID string) types.ContractEntry {
	return types.ContractEntry{
		Name:       c.Name,
		DocID:      docID,
		Anchor:     c.Anchor,
		Synopsis:   c.Synopsis,
		Platform:   c.Platform,
		Deprecated: c.Deprecated,
	}
}

// ProjectStatus provides summary information about an indexed project
type ProjectStatus struct {
	ProjectID      int64
	RootPath       string
	TotalDocuments int
	TotalSymbols   int
	TotalContracts int
	TotalWarnings  int
	LastIndexedAt  time.Time
	IndexVersion   string
	DatabaseSize   int64
}
