package domain

import "context"

// Storage persists the playground collection on the device.
// The store is its only writer; it always hands over the full collection.
type Storage interface {
	LoadPlaygrounds(ctx context.Context) ([]Playground, error)
	SavePlaygrounds(ctx context.Context, playgrounds []Playground) error

	// Preferences are the saved list view (sort + filter)
	LoadPreferences(ctx context.Context) (Preferences, bool, error)
	SavePreferences(ctx context.Context, prefs Preferences) error

	Close() error
}

// Maintainer is implemented by storage backends that support periodic housekeeping.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// Preferences captures the list view a user last chose.
type Preferences struct {
	SortBy   SortKey `json:"sortBy"`
	FilterBy Filter  `json:"filterBy"`
}
