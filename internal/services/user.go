package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ptyxes/recipebook/internal/store"
	"github.com/ptyxes/recipebook/types"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned by Authenticate for an unknown
	// username and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation is returned when input fails basic checks.
	ErrValidation = errors.New("validation failed")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, id int64, passwordHash, email string) (bool, error)
	UpdateReputation(ctx context.Context, id int64, delta int) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
	cost int
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) GetByID(ctx context.Context, id int64) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Authenticate returns the user whose username and password match.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Register creates a regular account.
func (s *UserService) Register(ctx context.Context, username, password, email string) (types.User, error) {
	return s.Create(ctx, username, password, email, types.RoleRegular)
}

// Create creates an account with the given role. It returns
// store.ErrConflict when the username is taken.
func (s *UserService) Create(ctx context.Context, username, password, email string, role types.Role) (types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return types.User{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if !role.Valid() {
		return types.User{}, fmt.Errorf("%w: unknown role %d", ErrValidation, role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, types.User{
		Username:     username,
		PasswordHash: string(hashed),
		Email:        strings.TrimSpace(email),
		Role:         role,
	})
}

// Update changes the password and/or email of a user. Empty values are
// left unchanged. It reports false when nothing changed.
func (s *UserService) Update(ctx context.Context, id int64, password, email string) (bool, error) {
	var hash string
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
		if err != nil {
			return false, fmt.Errorf("hash password: %w", err)
		}
		hash = string(hashed)
	}
	return s.repo.Update(ctx, id, hash, strings.TrimSpace(email))
}

func (s *UserService) UpdateReputation(ctx context.Context, id int64, delta int) (bool, error) {
	return s.repo.UpdateReputation(ctx, id, delta)
}

// Delete removes the user and everything they authored.
func (s *UserService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.Delete(ctx, id)
}
