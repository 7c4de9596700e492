package models

import (
	"github.com/shopspring/decimal"

	"github.com/minshop/minshop-backend/pkg/enums"
	"github.com/minshop/minshop-backend/pkg/store"
	"github.com/minshop/minshop-backend/pkg/types"
)

// User is an account in the users collection. Sellers additionally carry
// their company name and business license.
type User struct {
	store.Meta
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	Role         enums.Role `json:"role"`
	CompanyName  string     `json:"companyName,omitempty"`
	License      string     `json:"license,omitempty"`
	Cart         []CartLine `json:"cart"`
	Favorites    []string   `json:"favorites"`
}

// CartLine is one product+specs+quantity entry in a user's in-progress cart.
// Name, price and image are cached from the product at the time of adding and
// are not kept in sync with later product changes.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Specs     types.Specs     `json:"specs"`
	Quantity  int             `json:"quantity"`
	// Selected is a tri-state on disk: an absent flag means selected.
	Selected *bool `json:"selected,omitempty"`
}

// IsSelected treats a missing flag as true.
func (l CartLine) IsSelected() bool {
	return l.Selected == nil || *l.Selected
}

// Matches reports whether the line merges with the given product and specs.
func (l CartLine) Matches(productID string, specs types.Specs) bool {
	return l.ProductID == productID && l.Specs.Equal(specs)
}

// Clone returns a value copy with no shared map state.
func (l CartLine) Clone() CartLine {
	out := l
	out.Specs = l.Specs.Clone()
	if l.Selected != nil {
		selected := *l.Selected
		out.Selected = &selected
	}
	return out
}
