// Package store holds the record-store contracts for user accounts and
// employee profiles together with in-memory and PostgreSQL implementations.
package store

import (
	"context"
	"errors"

	"github.com/vaughan-dsouza/staffdir/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidRole    = errors.New("invalid role")
)

// UserStore is the credential store. Email uniqueness is enforced on create
// with a case-sensitive comparison; a role outside models.Role is rejected
// with ErrInvalidRole.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// EmployeeStore owns the canonical employee collection. Create assigns the id;
// Update replaces the stored record with the given one.
type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	CreateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	SearchEmployees(ctx context.Context, query string) ([]models.Employee, error)
}
