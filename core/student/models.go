package student

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-attendance/core"
)

// RosterOrdering is the order of the stored students fetched for a roster.
var RosterOrdering = []core.DBOrdering{
	{Field: "roll_number", Ascending: true},
	{Field: "name", Ascending: true},
}

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Student struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	RollNumber      string    `json:"roll_number"`
	AdmissionNumber string    `json:"admission_number,omitempty"`
	Class           string    `json:"class"`
	Section         string    `json:"section"`
	Status          string    `json:"status"`
	Photo           string    `json:"photo,omitempty"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

func (s Student) IsActive() bool { return s.Status == StatusActive }

// NewStudent contains information needed to add a Student to the roster.
type NewStudent struct {
	ID              string `json:"id" validate:"omitempty,notblank"`
	Name            string `json:"name" validate:"required,notblank"`
	RollNumber      string `json:"roll_number" validate:"required,notblank"`
	AdmissionNumber string `json:"admission_number"`
	Class           string `json:"class" validate:"required,alphanum_"`
	Section         string `json:"section" validate:"required,alphanum_"`
	Status          string `json:"status" validate:"omitempty,oneof=active inactive"`
	Photo           string `json:"photo" validate:"omitempty,url"`
}

func (ns *NewStudent) clean() {
	ns.ID = core.CleanString(ns.ID)
	ns.Name = core.CleanString(ns.Name)
	ns.RollNumber = core.CleanString(ns.RollNumber)
	ns.AdmissionNumber = core.CleanString(ns.AdmissionNumber)
	ns.Class = core.CleanString(ns.Class)
	ns.Section = core.CleanString(ns.Section)
	ns.Status = core.CleanString(ns.Status, true /* lower */)
	ns.Photo = core.CleanString(ns.Photo)
}

// importBatch namespaces validation errors by position, e.g. "students[2].name".
type importBatch struct {
	Students []NewStudent `json:"students" validate:"required,min=1,dive"`
}

func (b *importBatch) Validate(validate *validator.Validate) error {
	for i := range b.Students {
		b.Students[i].clean()
	}
	return validate.Struct(b)
}

// LessRollNumber orders roll numbers numerically when both are integers ("2" < "10"),
// numbers before anything else, and lexically otherwise.
func LessRollNumber(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

// Less reports whether s comes before other in a roster.
func (s Student) Less(other Student) bool {
	if s.RollNumber != other.RollNumber {
		return LessRollNumber(s.RollNumber, other.RollNumber)
	}
	return strings.ToLower(s.Name) < strings.ToLower(other.Name)
}
