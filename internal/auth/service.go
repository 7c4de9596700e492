package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/minshop/minshop-backend/pkg/auth"
	"github.com/minshop/minshop-backend/pkg/config"
	"github.com/minshop/minshop-backend/pkg/db/models"
	"github.com/minshop/minshop-backend/pkg/enums"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/security"
	"github.com/minshop/minshop-backend/pkg/store"
)

type userStore interface {
	Find(ctx context.Context, pred func(models.User) bool) (models.User, bool, error)
	FindByID(ctx context.Context, id string) (models.User, bool, error)
	Insert(ctx context.Context, user models.User) error
}

// Service registers accounts and exchanges credentials for access tokens.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

type service struct {
	users    userStore
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// NewService builds the auth service.
func NewService(users userStore, jwt config.JWTConfig, password config.PasswordConfig) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("users store required")
	}
	if jwt.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{users: users, jwt: jwt, password: password, now: time.Now}, nil
}

// RegisterInput is one signup request. Sellers must also provide their
// company name and business license.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Role        enums.Role
	CompanyName string
	License     string
}

// Session pairs the authenticated user with a freshly minted access token.
type Session struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// Register creates the account, hashes the password, and signs the caller in.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email and password are required")
	}
	role := input.Role
	if role == "" {
		role = enums.RoleBuyer
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}
	if role == enums.RoleSeller && (strings.TrimSpace(input.CompanyName) == "" || strings.TrimSpace(input.License) == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sellers must provide a company name and license")
	}

	if _, taken, err := s.users.Find(ctx, func(u models.User) bool {
		return normalizeEmail(u.Email) == email
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := s.now().UTC()
	user := models.User{
		Meta:         store.Meta{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CompanyName:  strings.TrimSpace(input.CompanyName),
		License:      strings.TrimSpace(input.License),
		Cart:         []models.CartLine{},
		Favorites:    []string{},
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist user")
	}

	return s.session(user)
}

// Login verifies the credentials and returns a fresh session. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, found, err := s.users.Find(ctx, func(u models.User) bool {
		return normalizeEmail(u.Email) == email
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	return s.session(user)
}

// UserFromToken resolves a bearer token to its account.
func (s *service) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := pkgauth.ParseAccessToken(s.jwt, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	user, found, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
	}
	return &user, nil
}

func (s *service) session(user models.User) (*Session, error) {
	token, err := pkgauth.MintAccessToken(s.jwt, s.now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return &Session{User: NewUserDTO(user), Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
