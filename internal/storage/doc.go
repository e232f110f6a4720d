// Package storage provides SQLite-based persistence for indexed documentation data.
//
// The storage layer manages:
//   - Project metadata
//   - Document paths and content hashes
//   - Registered object descriptions
//   - Contract summaries
//
// # Database Schema
//
// Tables:
//   - projects: Documentation tree metadata (root path, index version)
//   - documents: Document identifiers and SHA-256 content hashes
//   - symbols: Registered objects (functions, events, state variables, etc.)
//   - contracts: Contract descriptions with synopsis and platform metadata
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.vydoc/indices/project.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	doc := &storage.Document{
//	    ProjectID:   project.ID,
//	    DocID:       "api/token",
//	    ContentHash: hash,
//	}
//	err = db.UpsertDocument(ctx, doc)
//
// # Transactions
//
// Use transactions for atomic per-document updates:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	_ = tx.UpsertDocument(ctx, doc)
//	_ = tx.ReplaceSymbols(ctx, doc.ID, symbols)
//	_ = tx.ReplaceContracts(ctx, doc.ID, contracts)
//
//	if err := tx.Commit(); err != nil {
//	    return err
//	}
//
// # Incremental Updates
//
// Compare stored content hashes against the current document bytes to
// skip re-parsing unchanged documents.
//
// # Build Tags
//
// The storage package supports two build configurations:
//
// CGO Build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Requires C compiler
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo"
//
// Pure Go Build (default):
//
//   - Uses modernc.org/sqlite driver
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build
package storage
