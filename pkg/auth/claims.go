package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/minshop/minshop-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID string
	Role   enums.Role
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID string     `json:"userId"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
