package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/staffdir/internal/models"
)

const employeeColumns = `id, first_name, last_name, email, phone, department, position,
	employee_type, joining_date, salary, address, profile_pic, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PostgresEmployees struct {
	db *sqlx.DB
}

func NewPostgresEmployees(db *sqlx.DB) *PostgresEmployees {
	return &PostgresEmployees{db: db}
}

func (r *PostgresEmployees) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	employees := []models.Employee{}

	err := r.db.SelectContext(ctx, &employees,
		`SELECT `+employeeColumns+` FROM employees ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return employees, nil
}

func (r *PostgresEmployees) SearchEmployees(ctx context.Context, query string) ([]models.Employee, error) {
	employees := []models.Employee{}
	pattern := "%" + likeEscaper.Replace(query) + "%"

	err := r.db.SelectContext(ctx, &employees, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1 OR department ILIKE $1
		ORDER BY created_at, id
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return employees, nil
}

func (r *PostgresEmployees) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	var e models.Employee

	err := r.db.GetContext(ctx, &e,
		`SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &e, nil
}

func (r *PostgresEmployees) CreateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	stored := *e
	stored.ID = uuid.NewString()

	query := `
		INSERT INTO employees (id, first_name, last_name, email, phone, department, position,
			employee_type, joining_date, salary, address, profile_pic)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		stored.ID, stored.FirstName, stored.LastName, stored.Email, stored.Phone,
		stored.Department, stored.Position, stored.EmployeeType, stored.JoiningDate,
		stored.Salary, stored.Address, stored.ProfilePic).
		Scan(&stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &stored, nil
}

func (r *PostgresEmployees) UpdateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	stored := *e

	query := `
		UPDATE employees
		SET first_name=$1, last_name=$2, email=$3, phone=$4, department=$5, position=$6,
			employee_type=$7, joining_date=$8, salary=$9, address=$10, profile_pic=$11,
			updated_at=NOW()
		WHERE id=$12
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		stored.FirstName, stored.LastName, stored.Email, stored.Phone, stored.Department,
		stored.Position, stored.EmployeeType, stored.JoiningDate, stored.Salary,
		stored.Address, stored.ProfilePic, stored.ID).
		Scan(&stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &stored, nil
}

func (r *PostgresEmployees) DeleteEmployee(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
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
