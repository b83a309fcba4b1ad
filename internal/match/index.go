package match

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/listmatch/internal/normalize"
	"github.com/listmatch/internal/similarity"
)

// candidate is one master row with its approximate similarity to a search
// string.
type candidate struct {
	master int
	approx float64
}

// masterIndex precomputes one strategy's search strings over the master
// records and serves ranked shortlists. It is read-only after construction
// and safe for concurrent use; the shortlist cache keeps repeated input
// search strings from rescanning the master list.
type masterIndex struct {
	search   []string // per master row
	stripped []string // designator-stripped addresses, LastNameAddress only
	k        int
	cache    *lru.Cache[string, []candidate]
}

func newMasterIndex(masters []normalize.Record, strategy Strategy, k, cacheSize int) *masterIndex {
	ix := &masterIndex{
		search: make([]string, len(masters)),
		k:      k,
	}
	if strategy == LastNameAddress {
		ix.stripped = make([]string, len(masters))
	}
	for i, m := range masters {
		stripped := ""
		if strategy == LastNameAddress {
			stripped = normalize.StripDesignators(m.FullAddress)
			ix.stripped[i] = stripped
		}
		ix.search[i] = searchString(m, strategy, stripped)
	}
	if cacheSize > 0 {
		ix.cache, _ = lru.New[string, []candidate](cacheSize)
	}
	return ix
}

// searchString builds the strategy's search text for one record. The
// LastNameAddress form pairs the last name with the designator-stripped
// address, falling back to the locality fields when the record has no
// address.
func searchString(r normalize.Record, strategy Strategy, stripped string) string {
	switch strategy {
	case FullName:
		return r.Name()
	case LastNameAddress:
		if r.FullAddress == "" {
			return normalize.CollapseSpaces(r.LastName + " " + r.City + " " + r.State + " " + r.Zip)
		}
		return normalize.CollapseSpaces(r.LastName + " " + stripped)
	case FullAddress:
		return r.FullAddress
	}
	return ""
}

// shortlist returns the top K masters by approximate similarity to the
// search string, descending, with ties kept in master row order.
func (ix *masterIndex) shortlist(search string) []candidate {
	if ix.cache != nil {
		if cs, ok := ix.cache.Get(search); ok {
			return cs
		}
	}

	scored := make([]candidate, len(ix.search))
	for i, s := range ix.search {
		scored[i] = candidate{master: i, approx: similarity.TokenSetRatio(search, s)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].approx > scored[j].approx
	})
	if len(scored) > ix.k {
		scored = scored[:ix.k]
	}

	if ix.cache != nil {
		ix.cache.Add(search, scored)
	}
	return scored
}
