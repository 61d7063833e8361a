package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vaughan-dsouza/staffdir/internal/models"
)

type MemoryUsers struct {
	mu    sync.RWMutex
	byID  map[string]models.User
	email map[string]string
	now   func() time.Time
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		byID:  make(map[string]models.User),
		email: make(map[string]string),
		now:   time.Now,
	}
}

func (s *MemoryUsers) CreateUser(_ context.Context, u *models.User) (*models.User, error) {
	if !u.Role.Valid() {
		return nil, ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.email[u.Email]; ok {
		return nil, ErrDuplicateEmail
	}

	stored := *u
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now().UTC()

	s.byID[stored.ID] = stored
	s.email[stored.Email] = stored.ID

	return &stored, nil
}

func (s *MemoryUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.email[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *MemoryUsers) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	delete(s.email, u.Email)
	return nil
}

// MemoryEmployees keeps records in insertion order.
type MemoryEmployees struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]models.Employee
	now   func() time.Time
}

func NewMemoryEmployees() *MemoryEmployees {
	return &MemoryEmployees{
		byID: make(map[string]models.Employee),
		now:  time.Now,
	}
}

func (s *MemoryEmployees) snapshot(keep func(*models.Employee) bool) []models.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Employee, 0, len(s.order))
	for _, id := range s.order {
		e := s.byID[id]
		if keep == nil || keep(&e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *MemoryEmployees) ListEmployees(_ context.Context) ([]models.Employee, error) {
	return s.snapshot(nil), nil
}

func (s *MemoryEmployees) SearchEmployees(_ context.Context, query string) ([]models.Employee, error) {
	return s.snapshot(func(e *models.Employee) bool { return e.Matches(query) }), nil
}

func (s *MemoryEmployees) GetEmployee(_ context.Context, id string) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *MemoryEmployees) CreateEmployee(_ context.Context, e *models.Employee) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *e
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now().UTC()
	stored.UpdatedAt = stored.CreatedAt

	s.byID[stored.ID] = stored
	s.order = append(s.order, stored.ID)

	return &stored, nil
}

func (s *MemoryEmployees) UpdateEmployee(_ context.Context, e *models.Employee) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.byID[e.ID]
	if !ok {
		return nil, ErrNotFound
	}

	stored := *e
	stored.CreatedAt = prev.CreatedAt
	stored.UpdatedAt = s.now().UTC()
	s.byID[stored.ID] = stored

	return &stored, nil
}

func (s *MemoryEmployees) DeleteEmployee(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}
