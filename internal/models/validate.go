package models

import (
	"errors"
	"math"
	"strings"
)

const MaxSalary = 1e9

var ErrMalformedInput = errors.New("malformed input")

// InputError describes a client mistake; its message is safe to return to
// the caller. It matches ErrMalformedInput under errors.Is.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Is(target error) bool { return target == ErrMalformedInput }

func Malformed(msg string) error {
	return &InputError{Message: msg}
}

func ValidSalary(s float64) bool {
	return !math.IsNaN(s) && !math.IsInf(s, 0) && s >= 0 && s <= MaxSalary
}

func (a Address) Validate() error {
	switch {
	case strings.TrimSpace(a.Street) == "":
		return Malformed("Street is required")
	case strings.TrimSpace(a.City) == "":
		return Malformed("City is required")
	case strings.TrimSpace(a.State) == "":
		return Malformed("State is required")
	case strings.TrimSpace(a.ZipCode) == "":
		return Malformed("Zip code is required")
	}
	return nil
}

// Validate checks a complete employee record before it is stored.
func (e *Employee) Validate() error {
	required := []struct {
		value, msg string
	}{
		{e.FirstName, "First name is required"},
		{e.LastName, "Last name is required"},
		{e.Email, "Email is required"},
		{e.Phone, "Phone number is required"},
		{e.Department, "Department is required"},
		{e.Position, "Position is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return Malformed(r.msg)
		}
	}
	if !strings.Contains(e.Email, "@") {
		return Malformed("Invalid email")
	}
	if !e.EmployeeType.Valid() {
		return Malformed("Invalid employee type")
	}
	if e.JoiningDate.IsZero() {
		return Malformed("Joining date is required")
	}
	if !ValidSalary(e.Salary) {
		return Malformed("Invalid salary")
	}
	return e.Address.Validate()
}
