package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vaughan-dsouza/staffdir/internal/services"
	"github.com/vaughan-dsouza/staffdir/internal/upload"
	"github.com/vaughan-dsouza/staffdir/internal/utils"
)

const (
	picField      = "profilePic"
	formMaxMemory = 1 << 20
)

type EmployeeHandler struct {
	svc            *services.EmployeeService
	log            *slog.Logger
	maxUploadBytes int64
}

func NewEmployeeHandler(svc *services.EmployeeService, log *slog.Logger, maxUploadBytes int64) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, log: log, maxUploadBytes: maxUploadBytes}
}

// ---------------------- LIST ----------------------

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, employees)
}

// ---------------------- SEARCH ----------------------

func (h *EmployeeHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("query") {
		utils.JSONError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}

	employees, err := h.svc.Search(r.Context(), q.Get("query"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, employees)
}

// ---------------------- GET ONE ----------------------

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	employee, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, employee)
}

// ---------------------- CREATE ----------------------

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, pic, ok := h.readEmployee(w, r)
	if !ok {
		return
	}
	defer closeFile(pic)

	employee, err := h.svc.Create(r.Context(), fields, pic)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.InfoContext(r.Context(), "employee created", "employee_id", employee.ID)
	utils.JSON(w, http.StatusCreated, employee)
}

// ---------------------- UPDATE ----------------------

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, pic, ok := h.readEmployee(w, r)
	if !ok {
		return
	}
	defer closeFile(pic)

	employee, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), fields, pic)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, employee)
}

// ---------------------- DELETE ----------------------

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.InfoContext(r.Context(), "employee deleted", "employee_id", id)
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Employee deleted"})
}

// ---------------------- BODY PARSING ----------------------

// readEmployee accepts multipart or urlencoded forms, where address is JSON
// text, and JSON bodies, where address may also be an object.
func (h *EmployeeHandler) readEmployee(w http.ResponseWriter, r *http.Request) (services.EmployeeFields, *upload.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		fields, err := jsonFields(r)
		if err != nil {
			h.bodyError(w, err)
			return services.EmployeeFields{}, nil, false
		}
		return fields, nil, true
	}

	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(formMaxMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		h.bodyError(w, err)
		return services.EmployeeFields{}, nil, false
	}

	fields := formFields(func(key string) (string, bool) {
		v, ok := r.PostForm[key]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	})

	if r.MultipartForm == nil {
		return fields, nil, true
	}

	file, header, err := r.FormFile(picField)
	if errors.Is(err, http.ErrMissingFile) {
		return fields, nil, true
	}
	if err != nil {
		h.bodyError(w, err)
		return services.EmployeeFields{}, nil, false
	}
	return fields, &upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, true
}

func closeFile(f *upload.File) {
	if f == nil {
		return
	}
	if c, ok := f.Body.(io.Closer); ok {
		c.Close()
	}
}

func (h *EmployeeHandler) bodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		utils.JSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	utils.JSONError(w, http.StatusBadRequest, "Invalid request body")
}

func formFields(get func(string) (string, bool)) services.EmployeeFields {
	field := func(key string) *string {
		v, ok := get(key)
		if !ok {
			return nil
		}
		return &v
	}

	return services.EmployeeFields{
		FirstName:    field("firstName"),
		LastName:     field("lastName"),
		Email:        field("email"),
		Phone:        field("phone"),
		Department:   field("department"),
		Position:     field("position"),
		EmployeeType: field("employeeType"),
		JoiningDate:  field("joiningDate"),
		Salary:       field("salary"),
		Address:      field("address"),
	}
}

// jsonFields turns a JSON object into raw field text. Strings are unquoted;
// numbers and objects keep their JSON text. Null and unknown keys are ignored.
func jsonFields(r *http.Request) (services.EmployeeFields, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return services.EmployeeFields{}, err
	}

	return formFields(func(key string) (string, bool) {
		v, ok := raw[key]
		if !ok {
			return "", false
		}
		text := strings.TrimSpace(string(v))
		if text == "null" {
			return "", false
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s, true
		}
		return text, true
	}), nil
}
