package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vyperlang/vydoc/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Symbol names are case sensitive, so suffix matching via LIKE
	// must be too
	if _, err := db.Exec("PRAGMA case_sensitive_like=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable case sensitive like: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Project operations

// createProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		INSERT INTO projects (root_path, index_version, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query, project.RootPath, project.IndexVersion, now, now)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateProject(ctx context.Context, project *Project) error {
	return s.createProjectWithQuerier(ctx, s.querier(), project)
}

func scanProject(row *sql.Row) (*Project, error) {
	var project Project
	var lastIndexedAt sql.NullTime
	err := row.Scan(
		&project.ID, &project.RootPath, &project.IndexVersion,
		&project.TotalDocuments, &project.TotalSymbols, &project.TotalWarnings,
		&lastIndexedAt, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastIndexedAt.Valid {
		project.LastIndexedAt = lastIndexedAt.Time
	}
	return &project, nil
}

const projectColumns = `id, root_path, index_version, total_documents, total_symbols,
	       total_warnings, last_indexed_at, created_at, updated_at`

// getProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getProjectWithQuerier(ctx context.Context, q querier, rootPath string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE root_path = ?`
	return scanProject(q.QueryRowContext(ctx, query, rootPath))
}

func (s *SQLiteStorage) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return s.getProjectWithQuerier(ctx, s.querier(), rootPath)
}

// getProjectByIDWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getProjectByIDWithQuerier(ctx context.Context, q querier, projectID int64) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	return scanProject(q.QueryRowContext(ctx, query, projectID))
}

func (s *SQLiteStorage) GetProjectByID(ctx context.Context, projectID int64) (*Project, error) {
	return s.getProjectByIDWithQuerier(ctx, s.querier(), projectID)
}

// updateProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) updateProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		UPDATE projects
		SET index_version = ?, total_documents = ?, total_symbols = ?,
		    total_warnings = ?, last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		project.IndexVersion, project.TotalDocuments, project.TotalSymbols,
		project.TotalWarnings, project.LastIndexedAt, now, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateProject(ctx context.Context, project *Project) error {
	return s.updateProjectWithQuerier(ctx, s.querier(), project)
}

// Document operations

// upsertDocumentWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertDocumentWithQuerier(ctx context.Context, q querier, doc *Document) error {
	query := `
		INSERT INTO documents (project_id, doc_id, content_hash, symbol_count, warning_count, parsed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, doc_id) DO UPDATE SET
			content_hash = excluded.content_hash,
			symbol_count = excluded.symbol_count,
			warning_count = excluded.warning_count,
			parsed_at = excluded.parsed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		doc.ProjectID, doc.DocID, doc.ContentHash[:],
		doc.SymbolCount, doc.WarningCount, now, now, now).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	doc.ParsedAt = now
	doc.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertDocument(ctx context.Context, doc *Document) error {
	return s.upsertDocumentWithQuerier(ctx, s.querier(), doc)
}

const documentColumns = `id, project_id, doc_id, content_hash, symbol_count,
	       warning_count, parsed_at, created_at, updated_at`

func scanDocument(scan func(dest ...interface{}) error) (*Document, error) {
	var doc Document
	var hash []byte
	err := scan(
		&doc.ID, &doc.ProjectID, &doc.DocID, &hash,
		&doc.SymbolCount, &doc.WarningCount,
		&doc.ParsedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(doc.ContentHash[:], hash)
	return &doc, nil
}

// getDocumentWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getDocumentWithQuerier(ctx context.Context, q querier, projectID int64, docID string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE project_id = ? AND doc_id = ?`
	return scanDocument(q.QueryRowContext(ctx, query, projectID, docID).Scan)
}

func (s *SQLiteStorage) GetDocument(ctx context.Context, projectID int64, docID string) (*Document, error) {
	return s.getDocumentWithQuerier(ctx, s.querier(), projectID, docID)
}

// listDocumentsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listDocumentsWithQuerier(ctx context.Context, q querier, projectID int64) ([]*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE project_id = ? ORDER BY doc_id`
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStorage) ListDocuments(ctx context.Context, projectID int64) ([]*Document, error) {
	return s.listDocumentsWithQuerier(ctx, s.querier(), projectID)
}

// deleteDocumentWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteDocumentWithQuerier(ctx context.Context, q querier, documentID int64) error {
	query := `DELETE FROM documents WHERE id = ?`
	_, err := q.ExecContext(ctx, query, documentID)
	return err
}

func (s *SQLiteStorage) DeleteDocument(ctx context.Context, documentID int64) error {
	return s.deleteDocumentWithQuerier(ctx, s.querier(), documentID)
}

// Symbol operations

// replaceSymbolsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) replaceSymbolsWithQuerier(ctx context.Context, q querier, documentID int64, symbols []types.SymbolEntry) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM symbols WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("failed to clear symbols: %w", err)
	}

	query := `
		INSERT INTO symbols (document_id, fullname, kind, anchor, aliased, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	for _, sym := range symbols {
		_, err := q.ExecContext(ctx, query,
			documentID, sym.FullName, string(sym.Kind), sym.Anchor, sym.Aliased, now)
		if err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", sym.FullName, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) ReplaceSymbols(ctx context.Context, documentID int64, symbols []types.SymbolEntry) error {
	return s.replaceSymbolsWithQuerier(ctx, s.querier(), documentID, symbols)
}

const symbolColumns = `s.id, s.document_id, s.fullname, s.kind, s.anchor, s.aliased, s.created_at`

func collectSymbols(rows *sql.Rows) ([]*Symbol, error) {
	defer func() { _ = rows.Close() }()

	symbols := make([]*Symbol, 0)
	for rows.Next() {
		var sym Symbol
		err := rows.Scan(&sym.ID, &sym.DocumentID, &sym.FullName, &sym.Kind,
			&sym.Anchor, &sym.Aliased, &sym.CreatedAt)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, &sym)
	}
	return symbols, rows.Err()
}

// listSymbolsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listSymbolsWithQuerier(ctx context.Context, q querier, projectID int64) ([]*Symbol, error) {
	query := `
		SELECT ` + symbolColumns + `
		FROM symbols s
		JOIN documents d ON s.document_id = d.id
		WHERE d.project_id = ?
		ORDER BY s.fullname
	`
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	return collectSymbols(rows)
}

func (s *SQLiteStorage) ListSymbols(ctx context.Context, projectID int64) ([]*Symbol, error) {
	return s.listSymbolsWithQuerier(ctx, s.querier(), projectID)
}

// searchSymbolsWithQuerier matches either the exact full name or any
// dotted-suffix occurrence of the name, optionally filtered by kind.
func (s *SQLiteStorage) searchSymbolsWithQuerier(ctx context.Context, q querier, projectID int64, name string, kinds []types.SymbolKind, limit int) ([]*Symbol, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT ` + symbolColumns + `
		FROM symbols s
		JOIN documents d ON s.document_id = d.id
		WHERE d.project_id = ? AND (s.fullname = ? OR s.fullname LIKE ?)
	`)
	args := []interface{}{projectID, name, "%." + name}

	if len(kinds) > 0 {
		sb.WriteString(" AND s.kind IN (?" + strings.Repeat(",?", len(kinds)-1) + ")")
		for _, k := range kinds {
			args = append(args, string(k))
		}
	}
	sb.WriteString(" ORDER BY s.fullname LIMIT ?")
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	return collectSymbols(rows)
}

func (s *SQLiteStorage) SearchSymbols(ctx context.Context, projectID int64, name string, kinds []types.SymbolKind, limit int) ([]*Symbol, error) {
	return s.searchSymbolsWithQuerier(ctx, s.querier(), projectID, name, kinds, limit)
}

// Contract operations

// replaceContractsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) replaceContractsWithQuerier(ctx context.Context, q querier, documentID int64, contracts []types.ContractEntry) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM contracts WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("failed to clear contracts: %w", err)
	}

	query := `
		INSERT INTO contracts (document_id, name, anchor, synopsis, platform, deprecated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	for _, c := range contracts {
		_, err := q.ExecContext(ctx, query,
			documentID, c.Name, c.Anchor, c.Synopsis, c.Platform, c.Deprecated, now)
		if err != nil {
			return fmt.Errorf("failed to insert contract %s: %w", c.Name, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) ReplaceContracts(ctx context.Context, documentID int64, contracts []types.ContractEntry) error {
	return s.replaceContractsWithQuerier(ctx, s.querier(), documentID, contracts)
}

// listContractsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listContractsWithQuerier(ctx context.Context, q querier, projectID int64) ([]*Contract, error) {
	query := `
		SELECT c.id, c.document_id, c.name, c.anchor, c.synopsis, c.platform, c.deprecated, c.created_at
		FROM contracts c
		JOIN documents d ON c.document_id = d.id
		WHERE d.project_id = ?
		ORDER BY c.name
	`
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	contracts := make([]*Contract, 0)
	for rows.Next() {
		var c Contract
		err := rows.Scan(&c.ID, &c.DocumentID, &c.Name, &c.Anchor,
			&c.Synopsis, &c.Platform, &c.Deprecated, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, &c)
	}
	return contracts, rows.Err()
}

func (s *SQLiteStorage) ListContracts(ctx context.Context, projectID int64) ([]*Contract, error) {
	return s.listContractsWithQuerier(ctx, s.querier(), projectID)
}

// Status operations

func (s *SQLiteStorage) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	project, err := s.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	status := &ProjectStatus{
		ProjectID:     project.ID,
		RootPath:      project.RootPath,
		IndexVersion:  project.IndexVersion,
		TotalWarnings: project.TotalWarnings,
		LastIndexedAt: project.LastIndexedAt,
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE project_id = ?", projectID).Scan(&status.TotalDocuments)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM symbols s
		JOIN documents d ON s.document_id = d.id
		WHERE d.project_id = ?
	`, projectID).Scan(&status.TotalSymbols)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM contracts c
		JOIN documents d ON c.document_id = d.id
		WHERE d.project_id = ?
	`, projectID).Scan(&status.TotalContracts)
	if err != nil {
		return nil, err
	}

	var pageCount, pageSize int64
	err = s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.DatabaseSize = pageCount * pageSize
	}

	return status, nil
}

// Transaction implementations

// Write operations use the internal helper that takes a querier so they
// participate in the transaction. Status reads go through the main storage.

func (t *sqliteTx) CreateProject(ctx context.Context, project *Project) error {
	return t.storage.createProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return t.storage.getProjectWithQuerier(ctx, t.querier(), rootPath)
}

func (t *sqliteTx) GetProjectByID(ctx context.Context, projectID int64) (*Project, error) {
	return t.storage.getProjectByIDWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) UpdateProject(ctx context.Context, project *Project) error {
	return t.storage.updateProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) UpsertDocument(ctx context.Context, doc *Document) error {
	return t.storage.upsertDocumentWithQuerier(ctx, t.querier(), doc)
}

func (t *sqliteTx) GetDocument(ctx context.Context, projectID int64, docID string) (*Document, error) {
	return t.storage.getDocumentWithQuerier(ctx, t.querier(), projectID, docID)
}

func (t *sqliteTx) ListDocuments(ctx context.Context, projectID int64) ([]*Document, error) {
	return t.storage.listDocumentsWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) DeleteDocument(ctx context.Context, documentID int64) error {
	return t.storage.deleteDocumentWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) ReplaceSymbols(ctx context.Context, documentID int64, symbols []types.SymbolEntry) error {
	return t.storage.replaceSymbolsWithQuerier(ctx, t.querier(), documentID, symbols)
}

func (t *sqliteTx) ListSymbols(ctx context.Context, projectID int64) ([]*Symbol, error) {
	return t.storage.listSymbolsWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) SearchSymbols(ctx context.Context, projectID int64, name string, kinds []types.SymbolKind, limit int) ([]*Symbol, error) {
	return t.storage.searchSymbolsWithQuerier(ctx, t.querier(), projectID, name, kinds, limit)
}

func (t *sqliteTx) ReplaceContracts(ctx context.Context, documentID int64, contracts []types.ContractEntry) error {
	return t.storage.replaceContractsWithQuerier(ctx, t.querier(), documentID, contracts)
}

func (t *sqliteTx) ListContracts(ctx context.Context, projectID int64) ([]*Contract, error) {
	return t.storage.listContractsWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	return t.storage.GetStatus(ctx, projectID)
}

func (t *sqliteTx) Close() error {
	// Closing is handled by the parent storage
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}
