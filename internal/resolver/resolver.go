package resolver

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/vyperlang/vydoc/internal/registry"
	"github.com/vyperlang/vydoc/pkg/types"
)

// cacheSize bounds the resolution cache; entries from older registry
// generations age out through normal LRU eviction
const cacheSize = 1024

// cacheKey identifies one resolution request against one registry state
type cacheKey struct {
	target     string
	role       types.Role
	scope      types.Scope
	fuzzy      bool
	generation uint64
}

// Resolver finds the best-matching registered symbol for a raw reference
// target, applying the fallback search rules for the active scope
type Resolver struct {
	registry *registry.Registry
	cache    *lru.Cache[cacheKey, []types.Match]
	logger   *zap.Logger
}

// New creates a Resolver over the given registry
func New(reg *registry.Registry, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[cacheKey, []types.Match](cacheSize)
	if err != nil {
		// Only reachable with an invalid size constant
		panic(fmt.Sprintf("failed to create resolution cache: %v", err))
	}
	return &Resolver{
		registry: reg,
		cache:    cache,
		logger:   logger,
	}
}

// Resolve finds at most one match for the target in exact mode. Used when
// the reference names a symbol of a known unique kind. Contract references
// only ever match the exact name; all other roles fall back through the
// scope-qualified candidate chain.
func (r *Resolver) Resolve(target string, role types.Role, scope types.Scope) (types.Match, bool) {
	matches := r.lookup(target, role, scope, false)
	if len(matches) == 0 {
		return types.Match{}, false
	}
	return matches[0], true
}

// ResolveFuzzy returns a ranked candidate list for generic references
// where the kind is unconstrained or ambiguous. Exact scope-qualified
// matches are tried first; failing that, a suffix search collects every
// symbol whose fully qualified name ends with "."+name and whose kind the
// role allows. The caller decides how to disambiguate multiple matches.
func (r *Resolver) ResolveFuzzy(target string, role types.Role, scope types.Scope) []types.Match {
	return r.lookup(target, role, scope, true)
}

// ResolveReference resolves a collected reference, choosing fuzzy mode for
// generic roles and for targets carrying the leading "." modifier. An
// unresolved reference degrades to plain text and logs a warning; it never
// fails the build.
func (r *Resolver) ResolveReference(ref types.Reference) ([]types.Match, bool) {
	_, suffixFirst, _ := types.ParseTarget(ref.Target)
	fuzzy := ref.Role == types.RoleObj || suffixFirst

	var matches []types.Match
	if fuzzy {
		matches = r.ResolveFuzzy(ref.Target, ref.Role, ref.Scope)
	} else if m, ok := r.Resolve(ref.Target, ref.Role, ref.Scope); ok {
		matches = []types.Match{m}
	}

	if len(matches) == 0 {
		r.logger.Warn("unresolved reference",
			zap.String("target", ref.Target),
			zap.String("role", string(ref.Role)),
			zap.String("document", ref.DocID),
			zap.Int("line", ref.Line))
		return nil, false
	}
	return matches, true
}

// lookup is the shared resolution path behind Resolve and ResolveFuzzy
func (r *Resolver) lookup(target string, role types.Role, scope types.Scope, fuzzy bool) []types.Match {
	key := cacheKey{
		target:     target,
		role:       role,
		scope:      scope,
		fuzzy:      fuzzy,
		generation: r.registry.Generation(),
	}
	if cached, ok := r.cache.Get(key); ok {
		return cached
	}

	name, suffixFirst, _ := types.ParseTarget(target)
	title := types.DisplayTitle(target)

	var matches []types.Match
	switch {
	case fuzzy && suffixFirst:
		matches = r.suffixMatches(name, role, title)
		if len(matches) == 0 {
			matches = r.exactMatches(name, role, scope, title)
		}
	case fuzzy:
		matches = r.exactMatches(name, role, scope, title)
		if len(matches) == 0 {
			matches = r.suffixMatches(name, role, title)
		}
	default:
		matches = r.exactMatches(name, role, scope, title)
	}

	r.cache.Add(key, matches)
	return matches
}

// exactMatches tries the scope-qualified candidate names in priority
// order and returns the first that exists with an allowed kind
func (r *Resolver) exactMatches(name string, role types.Role, scope types.Scope, title string) []types.Match {
	for _, candidate := range r.candidates(name, role, scope) {
		entry, ok := r.registry.LookupSymbol(candidate)
		if !ok {
			continue
		}
		if !role.Allows(entry.Kind) {
			continue
		}
		return []types.Match{{Entry: entry, Title: title}}
	}
	return nil
}

// candidates builds the qualified lookup chain for a short or qualified
// name: contract.interface.name, interface.name, contract.name, then the
// bare name. Contract references skip the chain entirely; contracts are
// never found by qualification or suffix.
func (r *Resolver) candidates(name string, role types.Role, scope types.Scope) []string {
	if role == types.RoleContract {
		return []string{name}
	}

	out := make([]string, 0, 4)
	if scope.Contract != "" && scope.Interface != "" {
		out = append(out, scope.Contract+"."+scope.Interface+"."+name)
	}
	if scope.Interface != "" {
		out = append(out, scope.Interface+"."+name)
	}
	if scope.Contract != "" {
		out = append(out, scope.Contract+"."+name)
	}
	return append(out, name)
}

// suffixMatches collects every registered symbol ending in "."+name whose
// kind the role allows
func (r *Resolver) suffixMatches(name string, role types.Role, title string) []types.Match {
	if role == types.RoleContract {
		return nil
	}

	entries := r.registry.SuffixSearch(name, role.Kinds())
	if len(entries) == 0 {
		return nil
	}
	matches := make([]types.Match, 0, len(entries))
	for _, entry := range entries {
		matches = append(matches, types.Match{Entry: entry, Title: title})
	}
	return matches
}
