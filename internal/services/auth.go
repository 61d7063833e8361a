package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vaughan-dsouza/staffdir/internal/models"
	"github.com/vaughan-dsouza/staffdir/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Tokens issues and verifies identity tokens.
type Tokens interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

type AuthService struct {
	users  store.UserStore
	tokens Tokens
	cost   int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService uses bcrypt.DefaultCost when cost is not positive.
func NewAuthService(users store.UserStore, tokens Tokens, cost int) *AuthService {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, cost: cost}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	return s.create(ctx, username, email, password, models.RoleUser)
}

func (s *AuthService) create(ctx context.Context, username, email, password string, role models.Role) (*models.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", models.Malformed("Email and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, "", models.Malformed("Invalid email")
	}
	if len(password) < minPasswordLen {
		return nil, "", models.Malformed(fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, "", store.ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, &models.User{
		Username: strings.TrimSpace(username),
		Email:    email,
		Password: string(hash),
		Role:     role,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return u, token, nil
}

// Login never reveals whether the email exists: both an unknown email and a
// wrong password return ErrInvalidCredentials after a bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return u, token, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	})
	return s.dummyHash
}

// Authenticate resolves a bearer token to a stored user. Tokens of users that
// no longer exist are rejected like forged ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	u, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return u, nil
}

// EnsureAdmin creates an admin account unless the email is already taken.
// It reports whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	_, _, err := s.create(ctx, username, email, password, models.RoleAdmin)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
