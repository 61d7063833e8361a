package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type EmployeeType string

const (
	FullTime EmployeeType = "Full-time"
	PartTime EmployeeType = "Part-time"
	Contract EmployeeType = "Contract"
	Intern   EmployeeType = "Intern"
)

const dateLayout = "2006-01-02"

func (t EmployeeType) Valid() bool {
	switch t {
	case FullTime, PartTime, Contract, Intern:
		return true
	}
	return false
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Value stores the address as a JSON document.
func (a Address) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Address{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}
	return fmt.Errorf("address: unsupported scan type %T", src)
}

// Date is a calendar day without a time-of-day component.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	p, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case []byte:
		p, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = p
		return nil
	case string:
		p, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = p
		return nil
	}
	return fmt.Errorf("date: unsupported scan type %T", src)
}

type Employee struct {
	ID           string       `db:"id" json:"id"`
	FirstName    string       `db:"first_name" json:"firstName"`
	LastName     string       `db:"last_name" json:"lastName"`
	Email        string       `db:"email" json:"email"`
	Phone        string       `db:"phone" json:"phone"`
	Department   string       `db:"department" json:"department"`
	Position     string       `db:"position" json:"position"`
	EmployeeType EmployeeType `db:"employee_type" json:"employeeType"`
	JoiningDate  Date         `db:"joining_date" json:"joiningDate"`
	Salary       float64      `db:"salary" json:"salary"`
	Address      Address      `db:"address" json:"address"`
	ProfilePic   string       `db:"profile_pic" json:"profilePic"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

// Matches reports whether q occurs, ignoring case, in the first name,
// last name, email or department. An empty query matches every employee.
func (e *Employee) Matches(q string) bool {
	q = strings.ToLower(q)
	for _, f := range []string{e.FirstName, e.LastName, e.Email, e.Department} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
