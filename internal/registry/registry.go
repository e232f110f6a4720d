package registry

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/vyperlang/vydoc/pkg/types"
)

// Registry is the build session object holding the symbol table and the
// contract registry. It is created at build start, mutated by document
// processing, cleared per document on invalidation, and discarded at build
// end. Workers accumulate into private registries which are folded into
// the shared one during the single-threaded merge phase.
type Registry struct {
	mu         sync.RWMutex
	symbols    map[string]types.SymbolEntry // keyed by fully qualified name
	contracts  map[string]types.ContractEntry
	generation uint64 // bumped on every mutation, used for cache invalidation
	warnings   int
	logger     *zap.Logger
}

// New creates an empty registry. A nil logger falls back to zap.NewNop().
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		symbols:   make(map[string]types.SymbolEntry),
		contracts: make(map[string]types.ContractEntry),
		logger:    logger,
	}
}

// RegisterSymbol records a symbol under its fully qualified name.
//
// Collision handling: a canonical definition overrides an existing alias;
// an alias arriving after a canonical definition is a silent no-op; two
// canonical (or two alias) definitions of the same name produce a
// duplicate-definition warning and the first entry wins.
func (r *Registry) RegisterSymbol(entry types.SymbolEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.symbols[entry.FullName]
	if !ok {
		r.symbols[entry.FullName] = entry
		r.generation++
		return
	}

	switch {
	case existing.Aliased && !entry.Aliased:
		// Canonical definitions win over aliases
		r.symbols[entry.FullName] = entry
		r.generation++
	case !existing.Aliased && entry.Aliased:
		// Alias of an already-canonical symbol, nothing to do
	default:
		r.warnings++
		r.logger.Warn("duplicate symbol definition",
			zap.String("symbol", entry.FullName),
			zap.String("kind", string(entry.Kind)),
			zap.String("document", entry.DocID),
			zap.String("first_defined_in", existing.DocID))
	}
}

// LookupSymbol returns the entry registered under the fully qualified name
func (r *Registry) LookupSymbol(fullname string) (types.SymbolEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.symbols[fullname]
	return entry, ok
}

// RegisterContract records a contract registry entry. One entry is kept
// per contract name; the last write wins.
func (r *Registry) RegisterContract(entry types.ContractEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.contracts[entry.Name] = entry
	r.generation++
}

// LookupContract returns the contract registry entry for the given name
func (r *Registry) LookupContract(name string) (types.ContractEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.contracts[name]
	return entry, ok
}

// Forget removes every symbol and contract entry owned by the document.
// Used when a document is removed or is about to be rebuilt.
func (r *Registry) Forget(docID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, entry := range r.symbols {
		if entry.DocID == docID {
			delete(r.symbols, name)
		}
	}
	for name, entry := range r.contracts {
		if entry.DocID == docID {
			delete(r.contracts, name)
		}
	}
	r.generation++
}

// Merge copies entries owned by a document in docIDs from another registry
// into this one. The merge is an additive union keyed by document
// ownership; entries owned by documents outside the subset are left
// untouched, preventing cross-worker clobbering.
func (r *Registry) Merge(other *Registry, docIDs []string) {
	subset := make(map[string]bool, len(docIDs))
	for _, id := range docIDs {
		subset[id] = true
	}

	other.mu.RLock()
	symbols := make([]types.SymbolEntry, 0, len(other.symbols))
	for _, entry := range other.symbols {
		if subset[entry.DocID] {
			symbols = append(symbols, entry)
		}
	}
	contracts := make([]types.ContractEntry, 0, len(other.contracts))
	for _, entry := range other.contracts {
		if subset[entry.DocID] {
			contracts = append(contracts, entry)
		}
	}
	otherWarnings := other.warnings
	other.mu.RUnlock()

	// Deterministic order so duplicate warnings are stable across runs
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].FullName < symbols[j].FullName })
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].Name < contracts[j].Name })

	for _, entry := range symbols {
		r.RegisterSymbol(entry)
	}
	for _, entry := range contracts {
		r.RegisterContract(entry)
	}

	r.mu.Lock()
	r.warnings += otherWarnings
	r.mu.Unlock()
}

// Symbols returns a snapshot of all registered symbols sorted by name
func (r *Registry) Symbols() []types.SymbolEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.SymbolEntry, 0, len(r.symbols))
	for _, entry := range r.symbols {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}

// Contracts returns a snapshot of all contract entries sorted by name
func (r *Registry) Contracts() []types.ContractEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.ContractEntry, 0, len(r.contracts))
	for _, entry := range r.contracts {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SuffixSearch collects every registered symbol whose fully qualified name
// ends with "."+name and whose kind is in the allowed set. A nil kind set
// allows every kind.
func (r *Registry) SuffixSearch(name string, kinds []types.SymbolKind) []types.SymbolEntry {
	allowed := kindSet(kinds)
	suffix := "." + name

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.SymbolEntry, 0)
	for fullname, entry := range r.symbols {
		if !strings.HasSuffix(fullname, suffix) {
			continue
		}
		if allowed != nil && !allowed[entry.Kind] {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}

// Generation returns the mutation counter; consumers caching derived data
// compare generations to detect staleness
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// Warnings returns the number of duplicate-definition warnings emitted
func (r *Registry) Warnings() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.warnings
}

// Len returns the number of registered symbols
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.symbols)
}

func kindSet(kinds []types.SymbolKind) map[types.SymbolKind]bool {
	if kinds == nil {
		return nil
	}
	set := make(map[types.SymbolKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}
