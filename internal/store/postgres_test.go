package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaughan-dsouza/staffdir/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqlx.NewDb(db, "sqlmock"), mock
}

var userColumns = []string{"id", "username", "email", "password_hash", "role", "created_at"}

func TestPostgresUsers_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUsers(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO users \(id, username, email, password_hash, role\)`).
		WithArgs(sqlmock.AnyArg(), "ann", "ann@x.io", "hash", "user").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	u, err := repo.CreateUser(context.Background(), &models.User{
		Username: "ann", Email: "ann@x.io", Password: "hash", Role: models.RoleUser,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, now, u.CreatedAt)
}

func TestPostgresUsers_CreateInvalidRole(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewPostgresUsers(db)

	// no query is expected
	_, err := repo.CreateUser(context.Background(), &models.User{Email: "ann@x.io", Role: ""})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestPostgresUsers_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUsers(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.CreateUser(context.Background(), &models.User{Email: "ann@x.io", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestPostgresUsers_CreateDBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUsers(db)

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(errors.New("db down"))

	_, err := repo.CreateUser(context.Background(), &models.User{Email: "ann@x.io", Role: models.RoleUser})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
	assert.False(t, errors.Is(err, ErrDuplicateEmail))
}

func TestPostgresUsers_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUsers(db)

	mock.ExpectQuery(`SELECT id, username, email, password_hash, role, created_at\s+FROM users\s+WHERE email = \$1`).
		WithArgs("ann@x.io").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "ann", "ann@x.io", "hash", "admin", time.Now()))

	u, err := repo.GetUserByEmail(context.Background(), "ann@x.io")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "hash", u.Password)
}

func TestPostgresUsers_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUsers(db)

	mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresUsers_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUsers(db)

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteUser(context.Background(), "u-1"))
	assert.ErrorIs(t, repo.DeleteUser(context.Background(), "u-1"), ErrNotFound)
}

var employeeCols = []string{
	"id", "first_name", "last_name", "email", "phone", "department", "position",
	"employee_type", "joining_date", "salary", "address", "profile_pic", "created_at", "updated_at",
}

func employeeRow(rows *sqlmock.Rows, id, first, dept string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, first, "Smith", first+"@corp.io", "555", dept, "Dev",
		"Full-time", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 1000.5,
		[]byte(`{"street":"1 Main","city":"Town","state":"ST","zipCode":"12345"}`), "/uploads/1.png", now, now)
}

func TestPostgresEmployees_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresEmployees(db)

	mock.ExpectQuery(`SELECT .* FROM employees WHERE id = \$1`).
		WithArgs("e-1").
		WillReturnRows(employeeRow(sqlmock.NewRows(employeeCols), "e-1", "Alice", "Sales"))

	e, err := repo.GetEmployee(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", e.FirstName)
	assert.Equal(t, models.FullTime, e.EmployeeType)
	assert.Equal(t, "2024-01-15", e.JoiningDate.String())
	assert.Equal(t, "Town", e.Address.City)
	assert.Equal(t, "12345", e.Address.ZipCode)
	assert.Equal(t, 1000.5, e.Salary)
}

func TestPostgresEmployees_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresEmployees(db)

	mock.ExpectQuery(`FROM employees WHERE id = \$1`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetEmployee(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresEmployees_ListEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresEmployees(db)

	mock.ExpectQuery(`SELECT .* FROM employees ORDER BY created_at, id`).
		WillReturnRows(sqlmock.NewRows(employeeCols))

	list, err := repo.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestPostgresEmployees_SearchEscapesPattern(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresEmployees(db)

	rows := sqlmock.NewRows(employeeCols)
	employeeRow(rows, "e-1", "Alice", "acme-sales")

	mock.ExpectQuery(`WHERE first_name ILIKE \$1 OR last_name ILIKE \$1 OR email ILIKE \$1 OR department ILIKE \$1`).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(rows)

	list, err := repo.SearchEmployees(context.Background(), "50%_off")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "acme-sales", list[0].Department)
}

func TestPostgresEmployees_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresEmployees(db)
	now := time.Now().UTC()

	e := &models.Employee{
		FirstName: "A", LastName: "B", Email: "a@b.c", Phone: "1", Department: "D", Position: "P",
		EmployeeType: models.Intern, JoiningDate: models.NewDate(2024, 2, 1), Salary: 10,
		Address: models.Address{Street: "s", City: "c", State: "st", ZipCode: "z"},
	}

	mock.ExpectQuery(`INSERT INTO employees`).
		WithArgs(sqlmock.AnyArg(), "A", "B", "a@b.c", "1", "D", "P", "Intern", "2024-02-01", 10.0,
			`{"street":"s","city":"c","state":"st","zipCode":"z"}`, "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	got, err := repo.CreateEmployee(context.Background(), e)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Empty(t, e.ID)
	assert.Equal(t, now, got.CreatedAt)
}

func TestPostgresEmployees_UpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresEmployees(db)

	mock.ExpectQuery(`UPDATE employees\s+SET`).WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateEmployee(context.Background(), &models.Employee{ID: "gone"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresEmployees_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresEmployees(db)

	mock.ExpectExec(`DELETE FROM employees WHERE id = \$1`).WithArgs("e-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM employees WHERE id = \$1`).WithArgs("e-2").WillReturnError(errors.New("boom"))

	assert.ErrorIs(t, repo.DeleteEmployee(context.Background(), "e-1"), ErrNotFound)

	err := repo.DeleteEmployee(context.Background(), "e-2")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
