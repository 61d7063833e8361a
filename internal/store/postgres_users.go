package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/staffdir/internal/models"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

type PostgresUsers struct {
	db *sqlx.DB
}

func NewPostgresUsers(db *sqlx.DB) *PostgresUsers {
	return &PostgresUsers{db: db}
}

func (r *PostgresUsers) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	if !u.Role.Valid() {
		return nil, ErrInvalidRole
	}

	stored := *u
	stored.ID = uuid.NewString()

	query := `
		INSERT INTO users (id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		stored.ID, stored.Username, stored.Email, stored.Password, stored.Role).
		Scan(&stored.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &stored, nil
}

func (r *PostgresUsers) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User

	err := r.db.GetContext(ctx, &u, `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE `+where+` = $1
	`, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &u, nil
}

func (r *PostgresUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, "id", id)
}

func (r *PostgresUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, "email", email)
}

func (r *PostgresUsers) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
