package attendance

import (
	"strings"
	"time"

	"github.com/trezcool/masomo-attendance/core"
)

type Status string

// Statuses
const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// ParseStatus accepts any casing ("Absent", " PRESENT ").
func ParseStatus(raw string) (Status, error) {
	s := Status(core.CleanString(raw, true /* lower */))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

type StatusFilter string

// Status filters
const (
	FilterAll     StatusFilter = "all"
	FilterPresent StatusFilter = "present"
	FilterAbsent  StatusFilter = "absent"
)

// ParseStatusFilter maps an empty value to FilterAll.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	switch f := StatusFilter(core.CleanString(raw, true /* lower */)); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterPresent, FilterAbsent:
		return f, nil
	}
	return "", ErrInvalidFilter
}

func (f StatusFilter) match(s Status) bool {
	switch f {
	case FilterPresent:
		return s == StatusPresent
	case FilterAbsent:
		return s == StatusAbsent
	}
	return true
}

// SheetKey identifies an attendance sheet: one per date, class and section.
type SheetKey struct {
	Date    string `json:"date" validate:"required,isodate"`
	Class   string `json:"class" validate:"required,notblank,alphanum_"`
	Section string `json:"section" validate:"required,notblank,alphanum_"`
}

func NewSheetKey(date, class, section string) SheetKey {
	return SheetKey{
		Date:    core.CleanString(date),
		Class:   core.CleanString(class),
		Section: core.CleanString(section),
	}
}

// ID returns the sheet identifier: "{date}-{class}-{section}".
func (k SheetKey) ID() string {
	return strings.Join([]string{k.Date, k.Class, k.Section}, "-")
}

// Selected reports whether both class and section are chosen.
func (k SheetKey) Selected() bool {
	return k.Class != "" && k.Section != ""
}

func (k SheetKey) String() string { return k.ID() }

// Record is the attendance of one student, with the student's details as they were when marked.
type Record struct {
	StudentID   string `json:"student_id" validate:"required,notblank"`
	Name        string `json:"name"`
	RollNumber  string `json:"roll_number"`
	AdmissionNo string `json:"admission_no"`
	Class       string `json:"class"`
	Section     string `json:"section"`
	Status      Status `json:"status" validate:"required,oneof=present absent"`
}

// Sheet is the persisted attendance of a class section for a day.
type Sheet struct {
	ID            string    `json:"id"`
	Date          string    `json:"date"`
	Class         string    `json:"class"`
	Section       string    `json:"section"`
	Records       []Record  `json:"records"`
	TotalStudents int       `json:"total_students"`
	PresentCount  int       `json:"present_count"`
	AbsentCount   int       `json:"absent_count"`
	SubmittedBy   string    `json:"submitted_by"`
	SubmittedName string    `json:"submitted_name"`
	SubmittedAt   time.Time `json:"submitted_at"` // UTC
	LastUpdated   time.Time `json:"last_updated"` // UTC
}

func (s Sheet) Key() SheetKey {
	return SheetKey{Date: s.Date, Class: s.Class, Section: s.Section}
}

// Actor is the staff member submitting attendance.
type Actor struct {
	ID   string `json:"id" validate:"required,notblank"`
	Name string `json:"name"`
}

// Submission is what is known about the last submission of a working set.
type Submission struct {
	SubmittedBy   string    `json:"submitted_by"`
	SubmittedName string    `json:"submitted_name"`
	SubmittedAt   time.Time `json:"submitted_at"`
	LastUpdated   time.Time `json:"last_updated"`
}

func (s Submission) IsZero() bool { return s.LastUpdated.IsZero() }

type Summary struct {
	Total      int `json:"total"`
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	PresentPct int `json:"present_pct"`
	AbsentPct  int `json:"absent_pct"`
}

type ViewParams struct {
	Status   StatusFilter `query:"status"`
	Search   string       `query:"search"`
	Page     int          `query:"page"`
	PageSize int          `query:"page_size"`
}

type Page struct {
	Records       []Record `json:"records"`
	TotalFiltered int      `json:"total_filtered"`
	Page          int      `json:"page"`
	PageSize      int      `json:"page_size"`
	TotalPages    int      `json:"total_pages"`
	HasNext       bool     `json:"has_next"`
	HasPrev       bool     `json:"has_prev"`
}

type ExportRow struct {
	AdmissionNo string
	RollNo      string
	Name        string
	Status      string
	Class       string
	Section     string
	Date        string
}
