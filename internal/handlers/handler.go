package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vaughan-dsouza/staffdir/internal/models"
	"github.com/vaughan-dsouza/staffdir/internal/services"
	"github.com/vaughan-dsouza/staffdir/internal/store"
	"github.com/vaughan-dsouza/staffdir/internal/utils"
)

type Handler struct {
	Auth      *AuthHandler
	Employees *EmployeeHandler
}

func NewHandler(auth *services.AuthService, employees *services.EmployeeService, log *slog.Logger, maxUploadBytes int64) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(auth, log),
		Employees: NewEmployeeHandler(employees, log, maxUploadBytes),
	}
}

// writeError maps domain failures to their status codes. Anything else is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var inputErr *models.InputError

	switch {
	case errors.As(err, &inputErr):
		utils.JSONError(w, http.StatusBadRequest, inputErr.Message)
	case errors.Is(err, store.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, "Employee not found")
	case errors.Is(err, store.ErrDuplicateEmail):
		utils.JSONError(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.JSONError(w, http.StatusBadRequest, "Invalid credentials")
	default:
		log.ErrorContext(r.Context(), "request failed",
			"err", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
		)
		utils.JSONError(w, http.StatusInternalServerError, "Server error")
	}
}
