package domain

import (
	"fmt"
	"slices"
	"strings"
)

// SortKey selects the ordering of a playground list
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByRating    SortKey = "rating"
	SortByDateAdded SortKey = "dateAdded"
	SortByDistance  SortKey = "distance"
)

// SortKeys returns every supported key in display order
func SortKeys() []SortKey {
	return []SortKey{SortByDateAdded, SortByName, SortByRating, SortByDistance}
}

// ParseSortKey accepts the canonical key or a case-insensitive alias
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return SortByName, nil
	case "rating":
		return SortByRating, nil
	case "dateadded", "date_added", "date", "added":
		return SortByDateAdded, nil
	case "distance", "near":
		return SortByDistance, nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q", ErrValidation, s)
	}
}

func (k SortKey) String() string { return string(k) }

// Label returns the display name for the sort key
func (k SortKey) Label() string {
	switch k {
	case SortByName:
		return "Name"
	case SortByRating:
		return "Rating"
	case SortByDateAdded:
		return "Date Added"
	case SortByDistance:
		return "Distance"
	default:
		return "Unknown"
	}
}

// Next returns the key after k in SortKeys order, wrapping around
func (k SortKey) Next() SortKey {
	keys := SortKeys()
	i := slices.Index(keys, k)
	return keys[(i+1)%len(keys)]
}

// Filter narrows a playground list. Fields combine with AND;
// a zero field imposes no constraint.
type Filter struct {
	Ratings   []int  `json:"rating,omitempty"`
	HasPhotos *bool  `json:"hasPhotos,omitempty"`
	Search    string `json:"search,omitempty"`
}

// IsZero returns true if the filter keeps everything
func (f Filter) IsZero() bool {
	return len(f.Ratings) == 0 && f.HasPhotos == nil && strings.TrimSpace(f.Search) == ""
}

// Validate rejects ratings outside the allowed range
func (f Filter) Validate() error {
	for _, r := range f.Ratings {
		if r < MinRating || r > MaxRating {
			return fmt.Errorf("%w: rating filter %d outside %d-%d", ErrValidation, r, MinRating, MaxRating)
		}
	}
	return nil
}

// Clone returns a copy that shares no memory with f
func (f Filter) Clone() Filter {
	c := Filter{Search: f.Search}
	if f.Ratings != nil {
		c.Ratings = slices.Clone(f.Ratings)
	}
	if f.HasPhotos != nil {
		v := *f.HasPhotos
		c.HasPhotos = &v
	}
	return c
}
