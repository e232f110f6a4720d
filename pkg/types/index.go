package types

// IndexEntry represents one row of the generated contract index
type IndexEntry struct {
	Name       string
	DocID      string
	Anchor     string
	Platform   string
	Deprecated bool
	Synopsis   string
}

// IndexGroup holds the index entries sharing an initial letter
type IndexGroup struct {
	Letter  string // Lowercase first character of the display name
	Entries []IndexEntry
}

// ContractIndex is the generated index artifact: contract entries grouped
// alphabetically, plus a hint for whether the listing should render
// collapsed by default
type ContractIndex struct {
	Groups   []IndexGroup
	Collapse bool
}

// Len returns the total number of entries across all groups
func (ci *ContractIndex) Len() int {
	n := 0
	for _, g := range ci.Groups {
		n += len(g.Entries)
	}
	return n
}
