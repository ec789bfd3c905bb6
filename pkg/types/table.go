package types

import (
	"context"
	"errors"
)

// Table provides uniform CRUD operations over the fruit collection.
type Table interface {
	// Get retrieves the fruit with the given ID.
	// Returns ErrInvalidID if id is empty or malformed for the backend,
	// ErrNotFound if no fruit exists with that ID.
	Get(ctx context.Context, id string) (*Fruit, error)

	// Set creates or updates a fruit. When id is empty a new ID is
	// generated and the fruit is inserted. Otherwise the mutable fields
	// (Name, Color, ReadyToEat) of the existing fruit are replaced and
	// ErrNotFound is returned if no fruit has that ID. Returns the ID used.
	Set(ctx context.Context, id string, fruit *Fruit) (string, error)

	// Delete removes the fruit with the given ID.
	// Returns ErrNotFound if no fruit exists with that ID.
	Delete(ctx context.Context, id string) error

	// Fetch returns all fruits matching the filter, oldest first. An empty
	// filter returns every fruit in the table. Recognized keys are
	// FilterName, FilterColor (string) and FilterReadyToEat (bool).
	Fetch(ctx context.Context, filter map[string]any) ([]*Fruit, error)

	// Clear removes every fruit.
	Clear(ctx context.Context) error

	// Import inserts fruits in bulk, generating a new ID for each.
	// Returns the generated IDs in input order.
	Import(ctx context.Context, fruits []*Fruit) ([]string, error)
}

// Filter keys accepted by Table.Fetch.
const (
	FilterName       = "name"
	FilterColor      = "color"
	FilterReadyToEat = "readyToEat"
)

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter value type")
)

// IsAbsent reports whether err means the requested fruit does not exist,
// either because no record has the ID or because the ID cannot name one.
func IsAbsent(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidID)
}
