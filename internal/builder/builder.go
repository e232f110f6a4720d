package builder

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vyperlang/vydoc/internal/config"
	"github.com/vyperlang/vydoc/internal/contractindex"
	"github.com/vyperlang/vydoc/internal/parser"
	"github.com/vyperlang/vydoc/internal/registry"
	"github.com/vyperlang/vydoc/internal/resolver"
	"github.com/vyperlang/vydoc/internal/storage"
	"github.com/vyperlang/vydoc/pkg/types"
)

// ErrBuildInProgress is returned when a build is already running.
var ErrBuildInProgress = errors.New("build already in progress")

// Builder coordinates the build pipeline: discover -> parse -> merge -> resolve -> store
type Builder struct {
	storage storage.Storage
	config  *config.Config
	logger  *zap.Logger
	lock    BuildLock

	// Session state from the most recent successful build.
	mu       sync.RWMutex
	session  *registry.Registry
	resolver *resolver.Resolver
}

// Statistics contains statistics about a build operation
type Statistics struct {
	DocsParsed    int
	DocsSkipped   int
	DocsFailed    int
	Symbols       int
	Contracts     int
	References    int
	Unresolved    int
	Warnings      int
	Duration      time.Duration
	ErrorMessages []string
}

// New creates a new Builder instance
func New(store storage.Storage, cfg *config.Config, logger *zap.Logger) *Builder {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		storage: store,
		config:  cfg,
		logger:  logger,
	}
}

// documentSource is one discovered document with its content loaded
type documentSource struct {
	docID   string
	path    string
	content []byte
	hash    [32]byte
}

// batchResult collects the outcome of one worker batch
type batchResult struct {
	docIDs   []string
	registry *registry.Registry
	results  []*types.ParseResult
}

// BuildProject builds the full documentation index for a root directory.
// Unchanged documents (by content hash) are skipped and their symbols
// rehydrated from storage.
func (b *Builder) BuildProject(ctx context.Context, rootPath string) (*Statistics, error) {
	if !b.lock.TryAcquire() {
		return nil, ErrBuildInProgress
	}
	defer b.lock.Release()

	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	project, err := b.getOrCreateProject(ctx, rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create project: %w", err)
	}

	paths, err := b.discoverDocuments(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to discover documents: %w", err)
	}

	stored, err := b.storage.ListDocuments(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored documents: %w", err)
	}
	storedByDocID := make(map[string]*storage.Document, len(stored))
	for _, doc := range stored {
		storedByDocID[doc.DocID] = doc
	}

	changed, unchanged := b.partitionDocuments(paths, storedByDocID, stats)

	// Drop documents that no longer exist on disk
	if err := b.pruneDeleted(ctx, stored, paths); err != nil {
		return nil, err
	}

	session := registry.New(b.logger)
	if err := b.rehydrate(ctx, project.ID, unchanged, session); err != nil {
		return nil, fmt.Errorf("failed to rehydrate registry: %w", err)
	}

	results, err := b.parseDocuments(ctx, project, changed, stats)
	if err != nil {
		return nil, err
	}

	// Merge worker registries single-threaded, each restricted to the
	// documents its worker actually parsed.
	for _, br := range results {
		session.Merge(br.registry, br.docIDs)
	}

	res := resolver.New(session, b.logger)
	b.resolveReferences(res, results, stats)

	stats.Symbols = session.Len()
	stats.Contracts = len(session.Contracts())
	stats.Warnings += session.Warnings()

	project.TotalDocuments = len(paths)
	project.TotalSymbols = session.Len()
	project.TotalWarnings = stats.Warnings
	project.LastIndexedAt = time.Now()
	if err := b.storage.UpdateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project stats: %w", err)
	}

	b.mu.Lock()
	b.session = session
	b.resolver = res
	b.mu.Unlock()

	stats.Duration = time.Since(startTime)
	return stats, nil
}

// Session returns the registry from the most recent build, or nil.
func (b *Builder) Session() *registry.Registry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session
}

// Resolver returns the resolver from the most recent build, or nil.
func (b *Builder) Resolver() *resolver.Resolver {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.resolver
}

// ContractIndex builds the grouped contract index from the current session.
// A nil docFilter includes every document.
func (b *Builder) ContractIndex(docFilter map[string]bool) (types.ContractIndex, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.session == nil {
		return types.ContractIndex{}, errors.New("no build session, run BuildProject first")
	}
	return contractindex.Build(b.session.Contracts(), docFilter), nil
}

// getOrCreateProject retrieves an existing project or creates a new one
func (b *Builder) getOrCreateProject(ctx context.Context, rootPath string) (*storage.Project, error) {
	project, err := b.storage.GetProject(ctx, rootPath)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	project = &storage.Project{
		RootPath:     rootPath,
		IndexVersion: storage.CurrentSchemaVersion,
	}
	if err := b.storage.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// discoverDocuments finds all documentation sources under the root
func (b *Builder) discoverDocuments(rootPath string) (map[string]string, error) {
	paths := make(map[string]string) // docID -> absolute path

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// Skip hidden directories
			if strings.HasPrefix(info.Name(), ".") && path != rootPath {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		match := false
		for _, want := range b.config.SourceExtensions {
			if ext == want {
				match = true
				break
			}
		}
		if !match {
			return nil
		}

		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		paths[docIDFromPath(rel)] = path
		return nil
	})

	return paths, err
}

// docIDFromPath converts a relative file path to a document identifier:
// forward slashes, no extension.
func docIDFromPath(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

// partitionDocuments loads and hashes every discovered document, splitting
// them into changed sources and the set of unchanged document IDs.
func (b *Builder) partitionDocuments(paths map[string]string, stored map[string]*storage.Document, stats *Statistics) ([]documentSource, map[string]bool) {
	docIDs := make([]string, 0, len(paths))
	for docID := range paths {
		docIDs = append(docIDs, docID)
	}
	sort.Strings(docIDs)

	changed := make([]documentSource, 0, len(docIDs))
	unchanged := make(map[string]bool)

	for _, docID := range docIDs {
		path := paths[docID]
		content, err := os.ReadFile(path)
		if err != nil {
			stats.DocsFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
			continue
		}

		hash := sha256.Sum256(content)
		if prev, ok := stored[docID]; ok && prev.ContentHash == hash {
			stats.DocsSkipped++
			unchanged[docID] = true
			continue
		}

		changed = append(changed, documentSource{
			docID:   docID,
			path:    path,
			content: content,
			hash:    hash,
		})
	}

	return changed, unchanged
}

// pruneDeleted removes stored documents whose source file is gone
func (b *Builder) pruneDeleted(ctx context.Context, stored []*storage.Document, paths map[string]string) error {
	for _, doc := range stored {
		if _, ok := paths[doc.DocID]; ok {
			continue
		}
		if err := b.storage.DeleteDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("failed to delete document %s: %w", doc.DocID, err)
		}
		b.logger.Info("removed deleted document", zap.String("document", doc.DocID))
	}
	return nil
}

// rehydrate loads the stored symbols and contracts of unchanged documents
// into the session registry.
func (b *Builder) rehydrate(ctx context.Context, projectID int64, unchanged map[string]bool, session *registry.Registry) error {
	if len(unchanged) == 0 {
		return nil
	}

	docs, err := b.storage.ListDocuments(ctx, projectID)
	if err != nil {
		return err
	}
	docIDByRow := make(map[int64]string, len(docs))
	for _, doc := range docs {
		docIDByRow[doc.ID] = doc.DocID
	}

	symbols, err := b.storage.ListSymbols(ctx, projectID)
	if err != nil {
		return err
	}
	for _, sym := range symbols {
		docID := docIDByRow[sym.DocumentID]
		if unchanged[docID] {
			session.RegisterSymbol(sym.Entry(docID))
		}
	}

	contracts, err := b.storage.ListContracts(ctx, projectID)
	if err != nil {
		return err
	}
	for _, c := range contracts {
		docID := docIDByRow[c.DocumentID]
		if unchanged[docID] {
			session.RegisterContract(c.Entry(docID))
		}
	}
	return nil
}

// parseDocuments parses changed documents concurrently. Each batch runs in
// its own goroutine with a private registry and a storage transaction;
// parse work is throttled by a worker semaphore.
func (b *Builder) parseDocuments(ctx context.Context, project *storage.Project, changed []documentSource, stats *Statistics) ([]*batchResult, error) {
	batchSize := b.config.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	var batches [][]documentSource
	for i := 0; i < len(changed); i += batchSize {
		end := i + batchSize
		if end > len(changed) {
			end = len(changed)
		}
		batches = append(batches, changed[i:end])
	}

	results := make([]*batchResult, len(batches))
	semaphore := make(chan struct{}, b.config.Workers)

	var (
		parsed   int32
		failed   int32
		warnings int32
	)
	var mu sync.Mutex // Protect stats.ErrorMessages

	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			br, err := b.parseBatch(gctx, project, batch, semaphore, &parsed, &failed, &warnings, &mu, stats)
			if err != nil {
				return err
			}
			results[i] = br
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.DocsParsed = int(parsed)
	stats.DocsFailed += int(failed)
	stats.Warnings += int(warnings)
	return results, nil
}

// parseBatch parses one batch of documents within a transaction
func (b *Builder) parseBatch(ctx context.Context, project *storage.Project, batch []documentSource,
	semaphore chan struct{}, parsed, failed, warnings *int32,
	mu *sync.Mutex, stats *Statistics) (*batchResult, error) {

	br := &batchResult{registry: registry.New(b.logger)}
	p := parser.New(b.config.AddContractNames, b.logger)

	tx, err := b.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, src := range batch {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case semaphore <- struct{}{}:
			// Acquire semaphore
		}

		result := p.ParseDocument(src.docID, src.content)
		<-semaphore // Release semaphore

		for _, sym := range result.Symbols {
			br.registry.RegisterSymbol(sym)
		}
		for _, c := range result.Contracts {
			br.registry.RegisterContract(c)
		}

		doc := &storage.Document{
			ProjectID:    project.ID,
			DocID:        src.docID,
			ContentHash:  src.hash,
			SymbolCount:  len(result.Symbols),
			WarningCount: len(result.Errors),
		}
		if err := b.persistDocument(ctx, tx, doc, result); err != nil {
			atomic.AddInt32(failed, 1)
			mu.Lock()
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", src.docID, err))
			mu.Unlock()
			continue
		}

		atomic.AddInt32(parsed, 1)
		atomic.AddInt32(warnings, int32(len(result.Errors)))
		br.docIDs = append(br.docIDs, src.docID)
		br.results = append(br.results, result)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return br, nil
}

// persistDocument writes one parsed document and its extracted data
func (b *Builder) persistDocument(ctx context.Context, store storage.Storage, doc *storage.Document, result *types.ParseResult) error {
	if err := store.UpsertDocument(ctx, doc); err != nil {
		return err
	}
	if err := store.ReplaceSymbols(ctx, doc.ID, result.Symbols); err != nil {
		return err
	}
	return store.ReplaceContracts(ctx, doc.ID, result.Contracts)
}

// resolveReferences resolves every collected reference against the merged
// session registry. Unresolved references are warnings, never fatal.
func (b *Builder) resolveReferences(res *resolver.Resolver, results []*batchResult, stats *Statistics) {
	for _, br := range results {
		for _, pr := range br.results {
			for _, ref := range pr.References {
				stats.References++
				if _, ok := res.ResolveReference(ref); !ok {
					stats.Unresolved++
					stats.Warnings++
				}
			}
		}
	}
}
