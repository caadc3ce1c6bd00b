// Package query implements the pure sort/filter layer over playground lists.
//
// Filtering runs before sorting. All sorts are stable, so records that compare
// equal keep their input order. Inputs are never modified.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/geo"
)

// Query filters records and returns them ordered by key.
// ref is the reference point for SortByDistance and may be nil.
func Query(records []domain.Playground, key domain.SortKey, filter domain.Filter, ref *domain.Coordinates) []domain.Playground {
	out := Match(records, filter)
	Sort(out, key, ref)
	return out
}

// Match returns deep copies of the records that satisfy filter, in input order.
func Match(records []domain.Playground, filter domain.Filter) []domain.Playground {
	m := newMatcher(filter)
	out := make([]domain.Playground, 0, len(records))
	for _, p := range records {
		if m.keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Sort orders records in place by key. Unknown keys leave the order unchanged.
//
//   - name: case-insensitive ascending, then case-sensitive, then ID
//   - rating: highest first
//   - dateAdded: newest first
//   - distance: nearest to ref first; records without coordinates (or every
//     record when ref is nil) go last in their input order
func Sort(records []domain.Playground, key domain.SortKey, ref *domain.Coordinates) {
	switch key {
	case domain.SortByName:
		slices.SortStableFunc(records, compareName)
	case domain.SortByRating:
		slices.SortStableFunc(records, func(a, b domain.Playground) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	case domain.SortByDateAdded:
		slices.SortStableFunc(records, func(a, b domain.Playground) int {
			return b.DateAdded.Compare(a.DateAdded)
		})
	case domain.SortByDistance:
		sortByDistance(records, ref)
	}
}

func compareName(a, b domain.Playground) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

type ranked struct {
	p  domain.Playground
	km float64
	ok bool
}

func sortByDistance(records []domain.Playground, ref *domain.Coordinates) {
	if ref == nil {
		return
	}
	rs := make([]ranked, len(records))
	for i, p := range records {
		km, ok := geo.DistanceTo(ref, p)
		rs[i] = ranked{p: p, km: km, ok: ok}
	}
	slices.SortStableFunc(rs, func(a, b ranked) int {
		switch {
		case a.ok && b.ok:
			return cmp.Compare(a.km, b.km)
		case a.ok:
			return -1
		case b.ok:
			return 1
		default:
			return 0
		}
	})
	for i := range rs {
		records[i] = rs[i].p
	}
}

type matcher struct {
	ratings   map[int]bool
	hasPhotos *bool
	search    string
}

func newMatcher(f domain.Filter) matcher {
	m := matcher{hasPhotos: f.HasPhotos, search: strings.TrimSpace(f.Search)}
	if len(f.Ratings) > 0 {
		m.ratings = make(map[int]bool, len(f.Ratings))
		for _, r := range f.Ratings {
			m.ratings[r] = true
		}
	}
	return m
}

func (m matcher) keep(p domain.Playground) bool {
	if m.ratings != nil && !m.ratings[p.Rating] {
		return false
	}
	if m.hasPhotos != nil && *m.hasPhotos != p.HasPhotos() {
		return false
	}
	if m.search != "" && !matchesSearch(m.search, p) {
		return false
	}
	return true
}

// matchesSearch reports whether every rune of query appears, in order, in the
// name or the address (case- and accent-insensitive).
func matchesSearch(query string, p domain.Playground) bool {
	return fuzzy.MatchNormalizedFold(query, p.Name) ||
		fuzzy.MatchNormalizedFold(query, p.Location.Address)
}
