package storage

import (
	"context"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyperlang/vydoc/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	return storage
}

func createTestProject(t *testing.T, s *SQLiteStorage) *Project {
	project := &Project{
		RootPath:     "/docs/token",
		IndexVersion: CurrentSchemaVersion,
	}
	require.NoError(t, s.CreateProject(context.Background(), project))
	return project
}

func createTestDocument(t *testing.T, s *SQLiteStorage, projectID int64, docID string) *Document {
	doc := &Document{
		ProjectID:   projectID,
		DocID:       docID,
		ContentHash: sha256.Sum256([]byte(docID)),
	}
	require.NoError(t, s.UpsertDocument(context.Background(), doc))
	return doc
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	assert.NotNil(t, storage)
	assert.NotNil(t, storage.db)
}

func TestCreateProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage)
	assert.Greater(t, project.ID, int64(0))

	// Duplicate root path violates the unique constraint
	duplicate := &Project{RootPath: "/docs/token", IndexVersion: "1.0.0"}
	err := storage.CreateProject(ctx, duplicate)
	assert.Error(t, err)
}

func TestGetProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	created := createTestProject(t, storage)

	got, err := storage.GetProject(ctx, "/docs/token")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, CurrentSchemaVersion, got.IndexVersion)

	_, err = storage.GetProject(ctx, "/does/not/exist")
	assert.ErrorIs(t, err, ErrNotFound)

	byID, err := storage.GetProjectByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "/docs/token", byID.RootPath)
}

func TestUpdateProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage)

	project.TotalDocuments = 4
	project.TotalSymbols = 17
	project.TotalWarnings = 2
	require.NoError(t, storage.UpdateProject(ctx, project))

	got, err := storage.GetProject(ctx, project.RootPath)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalDocuments)
	assert.Equal(t, 17, got.TotalSymbols)
	assert.Equal(t, 2, got.TotalWarnings)
}

func TestUpsertDocument(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage)

	doc := createTestDocument(t, storage, project.ID, "api/token")
	assert.Greater(t, doc.ID, int64(0))
	firstID := doc.ID

	// Upserting the same doc_id updates in place
	doc.SymbolCount = 9
	doc.ContentHash = sha256.Sum256([]byte("changed"))
	require.NoError(t, storage.UpsertDocument(ctx, doc))
	assert.Equal(t, firstID, doc.ID)

	got, err := storage.GetDocument(ctx, project.ID, "api/token")
	require.NoError(t, err)
	assert.Equal(t, 9, got.SymbolCount)
	assert.Equal(t, doc.ContentHash, got.ContentHash)
}

func TestListAndDeleteDocuments(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage)
	createTestDocument(t, storage, project.ID, "api/vault")
	doc := createTestDocument(t, storage, project.ID, "api/token")

	docs, err := storage.ListDocuments(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "api/token", docs[0].DocID) // sorted by doc_id
	assert.Equal(t, "api/vault", docs[1].DocID)

	require.NoError(t, storage.DeleteDocument(ctx, doc.ID))
	_, err = storage.GetDocument(ctx, project.ID, "api/token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceSymbols(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage)
	doc := createTestDocument(t, storage, project.ID, "api/token")

	symbols := []types.SymbolEntry{
		{FullName: "Token", Kind: types.KindContract, Anchor: "vy-contract-token", DocID: "api/token"},
		{FullName: "Token.transfer", Kind: types.KindFunction, Anchor: "vy-function-token-transfer", DocID: "api/token"},
	}
	require.NoError(t, storage.ReplaceSymbols(ctx, doc.ID, symbols))

	stored, err := storage.ListSymbols(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Token", stored[0].FullName)
	assert.Equal(t, "Token.transfer", stored[1].FullName)

	// Replacing swaps out the previous set entirely
	require.NoError(t, storage.ReplaceSymbols(ctx, doc.ID, []types.SymbolEntry{
		{FullName: "Token.balanceOf", Kind: types.KindFunction, Anchor: "vy-function-token-balanceof", DocID: "api/token"},
	}))
	stored, err = storage.ListSymbols(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Token.balanceOf", stored[0].FullName)

	entry := stored[0].Entry("api/token")
	assert.Equal(t, types.KindFunction, entry.Kind)
	assert.Equal(t, "api/token", entry.DocID)
}

func TestSearchSymbols(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage)
	doc := createTestDocument(t, storage, project.ID, "api/token")

	require.NoError(t, storage.ReplaceSymbols(ctx, doc.ID, []types.SymbolEntry{
		{FullName: "Token.transfer", Kind: types.KindFunction, Anchor: "a1", DocID: "api/token"},
		{FullName: "Vault.transfer", Kind: types.KindFunction, Anchor: "a2", DocID: "api/token"},
		{FullName: "Token.Transfer", Kind: types.KindEvent, Anchor: "a3", DocID: "api/token"},
		{FullName: "transfer", Kind: types.KindFunction, Anchor: "a4", DocID: "api/token"},
	}))

	// Exact name plus any dotted suffix
	results, err := storage.SearchSymbols(ctx, project.ID, "transfer", nil, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	// Kind filter narrows to functions
	results, err = storage.SearchSymbols(ctx, project.ID, "transfer",
		[]types.SymbolKind{types.KindFunction}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = storage.SearchSymbols(ctx, project.ID, "Transfer",
		[]types.SymbolKind{types.KindEvent}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Token.Transfer", results[0].FullName)

	// Limit caps the result count
	results, err = storage.SearchSymbols(ctx, project.ID, "transfer", nil, 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestReplaceContracts(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage)
	doc := createTestDocument(t, storage, project.ID, "api/token")

	contracts := []types.ContractEntry{
		{Name: "Token", DocID: "api/token", Anchor: "vy-contract-token", Synopsis: "ERC-20 token", Platform: "EVM"},
	}
	require.NoError(t, storage.ReplaceContracts(ctx, doc.ID, contracts))

	stored, err := storage.ListContracts(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Token", stored[0].Name)
	assert.Equal(t, "ERC-20 token", stored[0].Synopsis)

	entry := stored[0].Entry("api/token")
	assert.Equal(t, "EVM", entry.Platform)
	assert.False(t, entry.Deprecated)
}

func TestDeleteDocumentCascades(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage)
	doc := createTestDocument(t, storage, project.ID, "api/token")

	require.NoError(t, storage.ReplaceSymbols(ctx, doc.ID, []types.SymbolEntry{
		{FullName: "Token", Kind: types.KindContract, Anchor: "a", DocID: "api/token"},
	}))
	require.NoError(t, storage.ReplaceContracts(ctx, doc.ID, []types.ContractEntry{
		{Name: "Token", DocID: "api/token", Anchor: "a"},
	}))

	require.NoError(t, storage.DeleteDocument(ctx, doc.ID))

	symbols, err := storage.ListSymbols(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, symbols)

	contracts, err := storage.ListContracts(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, contracts)
}

func TestTransaction(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage)

	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)

	doc := &Document{
		ProjectID:   project.ID,
		DocID:       "api/vault",
		ContentHash: sha256.Sum256([]byte("vault")),
	}
	require.NoError(t, tx.UpsertDocument(ctx, doc))
	require.NoError(t, tx.ReplaceSymbols(ctx, doc.ID, []types.SymbolEntry{
		{FullName: "Vault", Kind: types.KindContract, Anchor: "vy-contract-vault", DocID: "api/vault"},
	}))
	require.NoError(t, tx.Commit())

	symbols, err := storage.ListSymbols(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "Vault", symbols[0].FullName)
}

func TestTransactionRollback(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage)

	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)

	doc := &Document{
		ProjectID:   project.ID,
		DocID:       "api/vault",
		ContentHash: sha256.Sum256([]byte("vault")),
	}
	require.NoError(t, tx.UpsertDocument(ctx, doc))
	require.NoError(t, tx.Rollback())

	_, err = storage.GetDocument(ctx, project.ID, "api/vault")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetStatus(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage)
	doc := createTestDocument(t, storage, project.ID, "api/token")

	require.NoError(t, storage.ReplaceSymbols(ctx, doc.ID, []types.SymbolEntry{
		{FullName: "Token", Kind: types.KindContract, Anchor: "a", DocID: "api/token"},
		{FullName: "Token.transfer", Kind: types.KindFunction, Anchor: "b", DocID: "api/token"},
	}))
	require.NoError(t, storage.ReplaceContracts(ctx, doc.ID, []types.ContractEntry{
		{Name: "Token", DocID: "api/token", Anchor: "a"},
	}))

	status, err := storage.GetStatus(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalDocuments)
	assert.Equal(t, 2, status.TotalSymbols)
	assert.Equal(t, 1, status.TotalContracts)
	assert.Equal(t, "/docs/token", status.RootPath)

	_, err = storage.GetStatus(ctx, project.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}
