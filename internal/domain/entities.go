package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rating bounds (inclusive)
const (
	MinRating = 1
	MaxRating = 5
)

// Coordinates is a WGS84 point in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point lies within latitude/longitude bounds
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// String returns "lat,lon" with six decimal places
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// Location is where a playground is. Address-only entries are allowed.
type Location struct {
	Address     string       `json:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Clone returns a copy that does not share the coordinates pointer
func (l Location) Clone() Location {
	c := l
	if l.Coordinates != nil {
		coords := *l.Coordinates
		c.Coordinates = &coords
	}
	return c
}

// Playground is a user-recorded place with rating, notes and photos.
// ID and DateAdded never change after creation.
type Playground struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     Location  `json:"location"`
	Rating       int       `json:"rating"`
	Notes        string    `json:"notes,omitempty"`
	Photos       []string  `json:"photos"`
	DateAdded    time.Time `json:"dateAdded"`
	DateModified time.Time `json:"dateModified"`
}

// HasPhotos returns true if at least one photo reference is attached
func (p Playground) HasPhotos() bool {
	return len(p.Photos) > 0
}

// HasCoordinates returns true if the location carries a point
func (p Playground) HasCoordinates() bool {
	return p.Location.Coordinates != nil
}

// Clone returns a deep copy so callers never share slices or pointers with the store
func (p Playground) Clone() Playground {
	c := p
	if p.Photos != nil {
		c.Photos = make([]string, len(p.Photos))
		copy(c.Photos, p.Photos)
	}
	c.Location = p.Location.Clone()
	return c
}

// Stars renders the rating as filled/empty stars (e.g. "★★★☆☆")
func (p Playground) Stars() string {
	r := min(max(p.Rating, 0), MaxRating)
	return strings.Repeat("★", r) + strings.Repeat("☆", MaxRating-r)
}

// Validate checks the record-level invariants
func (p Playground) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if err := validateFields(p.Name, p.Rating, p.Location); err != nil {
		return err
	}
	if p.DateModified.Before(p.DateAdded) {
		return fmt.Errorf("%w: dateModified precedes dateAdded", ErrValidation)
	}
	return nil
}

// Draft holds the user-supplied fields for a new playground
type Draft struct {
	Name     string
	Location Location
	Rating   int
	Notes    string
	Photos   []string
}

// Validate checks that the draft can become a playground
func (d Draft) Validate() error {
	return validateFields(d.Name, d.Rating, d.Location)
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name     *string
	Location *Location
	Rating   *int
	Notes    *string
	Photos   *[]string
}

// IsEmpty returns true if the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Location == nil && p.Rating == nil && p.Notes == nil && p.Photos == nil
}

// Apply merges the patch into a copy of pg. Timestamps are not touched.
func (p Patch) Apply(pg Playground) Playground {
	out := pg.Clone()
	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
	}
	if p.Location != nil {
		out.Location = p.Location.Clone()
	}
	if p.Rating != nil {
		out.Rating = *p.Rating
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.Photos != nil {
		out.Photos = append([]string{}, (*p.Photos)...)
	}
	return out
}

func validateFields(name string, rating int, loc Location) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating %d outside %d-%d", ErrValidation, rating, MinRating, MaxRating)
	}
	if loc.Coordinates != nil && !loc.Coordinates.Valid() {
		return fmt.Errorf("%w: coordinates %s out of range", ErrValidation, loc.Coordinates)
	}
	return nil
}
