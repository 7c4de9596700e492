package types

import "maps"

// Specs is the free-form selection a buyer makes on a product (color, size,
// and so on). Two cart lines belong together only when their specs are
// structurally equal.
type Specs map[string]string

// Equal reports structural equality, treating nil and empty as the same.
func (s Specs) Equal(other Specs) bool {
	if len(s) == 0 && len(other) == 0 {
		return true
	}
	return maps.Equal(s, other)
}

// Clone returns an independent copy.
func (s Specs) Clone() Specs {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}
