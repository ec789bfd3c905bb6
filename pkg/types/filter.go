package types

// Filter is the parsed form of a Table.Fetch filter map. A nil field
// places no constraint.
type Filter struct {
	Name       *string
	Color      *string
	ReadyToEat *bool
}

// ParseFilter converts a Fetch filter map into a Filter. Unknown keys are
// ignored. Returns ErrInvalidFilter when a known key has a value of the
// wrong type.
func ParseFilter(m map[string]any) (Filter, error) {
	var f Filter
	for key, val := range m {
		switch key {
		case FilterName:
			s, ok := val.(string)
			if !ok {
				return Filter{}, ErrInvalidFilter
			}
			f.Name = &s
		case FilterColor:
			s, ok := val.(string)
			if !ok {
				return Filter{}, ErrInvalidFilter
			}
			f.Color = &s
		case FilterReadyToEat:
			b, ok := val.(bool)
			if !ok {
				return Filter{}, ErrInvalidFilter
			}
			f.ReadyToEat = &b
		}
	}
	return f, nil
}

// Match reports whether fruit satisfies every constraint of the filter.
func (f Filter) Match(fruit *Fruit) bool {
	if f.Name != nil && fruit.Name != *f.Name {
		return false
	}
	if f.Color != nil && fruit.Color != *f.Color {
		return false
	}
	if f.ReadyToEat != nil && fruit.ReadyToEat != *f.ReadyToEat {
		return false
	}
	return true
}
