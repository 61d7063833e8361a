package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vaughan-dsouza/staffdir/internal/models"
	"github.com/vaughan-dsouza/staffdir/internal/store"
	"github.com/vaughan-dsouza/staffdir/internal/upload"
)

// EmployeeFields holds raw client values. A nil field was not sent.
// Address carries the JSON text of the address object.
type EmployeeFields struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Phone        *string
	Department   *string
	Position     *string
	EmployeeType *string
	JoiningDate  *string
	Salary       *string
	Address      *string
}

type employeePatch struct {
	employeeType *models.EmployeeType
	joiningDate  *models.Date
	salary       *float64
	address      *models.Address
}

// decode parses the typed fields; plain text fields are copied as given.
func (f EmployeeFields) decode() (*employeePatch, error) {
	p := &employeePatch{}

	if f.EmployeeType != nil {
		t := models.EmployeeType(strings.TrimSpace(*f.EmployeeType))
		if !t.Valid() {
			return nil, models.Malformed("Invalid employee type")
		}
		p.employeeType = &t
	}

	if f.JoiningDate != nil {
		d, err := models.ParseDate(*f.JoiningDate)
		if err != nil {
			return nil, models.Malformed("Invalid joining date")
		}
		p.joiningDate = &d
	}

	if f.Salary != nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(*f.Salary), 64)
		if err != nil || !models.ValidSalary(v) {
			return nil, models.Malformed("Invalid salary")
		}
		p.salary = &v
	}

	if f.Address != nil {
		var a models.Address
		dec := json.NewDecoder(strings.NewReader(*f.Address))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&a); err != nil || dec.More() {
			return nil, models.Malformed("Invalid address")
		}
		p.address = &a
	}

	return p, nil
}

func (p *employeePatch) apply(f EmployeeFields, e *models.Employee) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&e.FirstName, f.FirstName)
	set(&e.LastName, f.LastName)
	set(&e.Email, f.Email)
	set(&e.Phone, f.Phone)
	set(&e.Department, f.Department)
	set(&e.Position, f.Position)

	if p.employeeType != nil {
		e.EmployeeType = *p.employeeType
	}
	if p.joiningDate != nil {
		e.JoiningDate = *p.joiningDate
	}
	if p.salary != nil {
		e.Salary = *p.salary
	}
	if p.address != nil {
		e.Address = *p.address
	}
}

type EmployeeService struct {
	store    store.EmployeeStore
	uploader upload.Uploader
}

func NewEmployeeService(s store.EmployeeStore, u upload.Uploader) *EmployeeService {
	return &EmployeeService{store: s, uploader: u}
}

// savePicture stores pic once the record has validated; nil means no file.
func (s *EmployeeService) savePicture(ctx context.Context, pic *upload.File) (string, error) {
	if pic == nil {
		return "", nil
	}
	if s.uploader == nil {
		return "", models.Malformed("File uploads are not enabled")
	}
	ref, err := s.uploader.Save(ctx, *pic)
	if err != nil {
		return "", fmt.Errorf("save picture: %w", err)
	}
	return ref, nil
}

// discardPicture removes a picture saved for a write that then failed.
// Errors are ignored; the file is only left orphaned.
func (s *EmployeeService) discardPicture(ctx context.Context, ref string) {
	if ref == "" || s.uploader == nil {
		return
	}
	_ = s.uploader.Remove(context.WithoutCancel(ctx), ref)
}

func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, error) {
	return s.store.ListEmployees(ctx)
}

func (s *EmployeeService) Search(ctx context.Context, query string) ([]models.Employee, error) {
	return s.store.SearchEmployees(ctx, query)
}

func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

// Create validates a complete record and stores it. pic may be nil.
func (s *EmployeeService) Create(ctx context.Context, f EmployeeFields, pic *upload.File) (*models.Employee, error) {
	p, err := f.decode()
	if err != nil {
		return nil, err
	}

	var e models.Employee
	p.apply(f, &e)

	if err := e.Validate(); err != nil {
		return nil, err
	}

	if e.ProfilePic, err = s.savePicture(ctx, pic); err != nil {
		return nil, err
	}

	created, err := s.store.CreateEmployee(ctx, &e)
	if err != nil {
		s.discardPicture(ctx, e.ProfilePic)
		return nil, err
	}
	return created, nil
}

// Update merges the sent fields onto the stored record. An address replaces
// the stored one whole; without a new picture the current one is kept.
func (s *EmployeeService) Update(ctx context.Context, id string, f EmployeeFields, pic *upload.File) (*models.Employee, error) {
	p, err := f.decode()
	if err != nil {
		return nil, err
	}

	e, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	p.apply(f, e)

	if err := e.Validate(); err != nil {
		return nil, err
	}

	ref, err := s.savePicture(ctx, pic)
	if err != nil {
		return nil, err
	}
	if ref != "" {
		e.ProfilePic = ref
	}

	// the record may have been deleted since GetEmployee
	updated, err := s.store.UpdateEmployee(ctx, e)
	if err != nil {
		s.discardPicture(ctx, ref)
		return nil, err
	}
	return updated, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteEmployee(ctx, id)
}
