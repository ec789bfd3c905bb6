package types

import "time"

// OnMarker is the value a checked HTML checkbox submits when it has no
// explicit value attribute.
const OnMarker = "on"

// Fruit is the single entity managed by the store.
type Fruit struct {
	FruitID    string    `json:"_id"`        // Assigned by the store on creation; immutable.
	Name       string    `json:"name"`       // Free text, may be empty.
	Color      string    `json:"color"`      // Free text, may be empty.
	ReadyToEat bool      `json:"readyToEat"` // Always a real boolean, never the raw form value.
	CreatedAt  time.Time `json:"createdAt"`  // Set by the store on creation.
	UpdatedAt  time.Time `json:"updatedAt"`  // Set by the store on every write.
}

// CoerceReadyToEat converts a raw checkbox value into a boolean. Only the
// exact OnMarker yields true; every other value, including the empty string
// that stands for an absent field, yields false.
func CoerceReadyToEat(raw string) bool {
	return raw == OnMarker
}

// NewFruit builds an unsaved fruit from raw form values, applying
// CoerceReadyToEat to readyRaw.
func NewFruit(name, color, readyRaw string) *Fruit {
	return &Fruit{
		Name:       name,
		Color:      color,
		ReadyToEat: CoerceReadyToEat(readyRaw),
	}
}

// Clone returns a copy of the fruit.
func (f *Fruit) Clone() *Fruit {
	cp := *f
	return &cp
}
