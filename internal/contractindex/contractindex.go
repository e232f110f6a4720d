// Package contractindex generates the alphabetically grouped contract
// index artifact from the contract registry.
package contractindex

import (
	"sort"
	"strings"
	"unicode"

	"github.com/vyperlang/vydoc/pkg/types"
)

// Build groups all registered contracts by the lowercase first character
// of their display name. docFilter, when non-nil, restricts the listing to
// contracts declared in one of the given documents.
//
// The Collapse hint asks renderers to start the listing collapsed when
// nested (dotted) contract names outnumber top-level ones, which keeps
// large subcontract trees from dominating the page.
func Build(contracts []types.ContractEntry, docFilter map[string]bool) types.ContractIndex {
	filtered := make([]types.ContractEntry, 0, len(contracts))
	for _, c := range contracts {
		if docFilter != nil && !docFilter[c.DocID] {
			continue
		}
		filtered = append(filtered, c)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
	})

	var (
		groups   []types.IndexGroup
		topLevel int
		nested   int
	)
	for _, c := range filtered {
		if c.IsNested() {
			nested++
		} else {
			topLevel++
		}

		letter := firstLetter(c.Name)
		if len(groups) == 0 || groups[len(groups)-1].Letter != letter {
			groups = append(groups, types.IndexGroup{Letter: letter})
		}
		g := &groups[len(groups)-1]
		g.Entries = append(g.Entries, types.IndexEntry{
			Name:       c.Name,
			DocID:      c.DocID,
			Anchor:     c.Anchor,
			Platform:   c.Platform,
			Deprecated: c.Deprecated,
			Synopsis:   c.Synopsis,
		})
	}

	return types.ContractIndex{
		Groups:   groups,
		Collapse: nested > topLevel,
	}
}

// firstLetter returns the lowercase first character of the display name
func firstLetter(name string) string {
	for _, r := range name {
		return string(unicode.ToLower(r))
	}
	return ""
}
