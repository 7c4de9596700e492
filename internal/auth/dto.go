package auth

import (
	"time"

	"github.com/minshop/minshop-backend/pkg/db/models"
	"github.com/minshop/minshop-backend/pkg/enums"
)

// UserDTO is the account shape returned to clients: everything on the user
// except credentials.
type UserDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        enums.Role `json:"role"`
	CompanyName string     `json:"companyName,omitempty"`
	License     string     `json:"license,omitempty"`
	Favorites   []string   `json:"favorites"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewUserDTO strips the password hash and cart internals from a stored user.
func NewUserDTO(user models.User) UserDTO {
	favorites := user.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	return UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		CompanyName: user.CompanyName,
		License:     user.License,
		Favorites:   favorites,
		CreatedAt:   user.CreatedAt,
	}
}
