// Package user is the account directory: registration, login and handle to
// identity lookups.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/xjzfwqgf/chat-web/internal/model"
)

var (
	ErrUserExists         = errors.New("username already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidInput       = errors.New("username, password and nickname are required")
)

// Repository persists users
type Repository interface {
	Create(ctx context.Context, u model.User) error
	Get(ctx context.Context, username string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Lookup(ctx context.Context, usernames []string) (map[string]model.Identity, error)
}

// Service implements register and login on top of a Repository
type Service struct {
	repo Repository
	cost int
}

// NewService creates a Service. cost is the bcrypt cost; 0 uses the default.
func NewService(repo Repository, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, cost: cost}
}

// Register creates a new account with a hashed password
func (s *Service) Register(ctx context.Context, username, password, nickname, avatar string) error {
	username = strings.TrimSpace(username)
	nickname = strings.TrimSpace(nickname)
	if username == "" || password == "" || nickname == "" {
		return ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.Create(ctx, model.User{
		Username:     username,
		PasswordHash: string(hash),
		Nickname:     nickname,
		Avatar:       avatar,
	})
}

// Login checks the password and returns the account
func (s *Service) Login(ctx context.Context, username, password string) (model.User, error) {
	u, err := s.repo.Get(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// List returns every registered user
func (s *Service) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}
