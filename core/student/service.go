package student

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-attendance/core"
)

type (
	Repository interface {
		// QueryActiveStudents returns the active students of a class section.
		QueryActiveStudents(ctx context.Context, class, section string) ([]Student, error)
		// UpsertStudents creates the students or replaces those with the same ID.
		UpsertStudents(ctx context.Context, students ...Student) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Roster returns the active students of class/section ordered by roll number, then name.
// An incomplete selection yields an empty roster.
func (svc *Service) Roster(ctx context.Context, class, section string) ([]Student, error) {
	class, section = core.CleanString(class), core.CleanString(section)
	if class == "" || section == "" {
		return []Student{}, nil
	}

	students, err := svc.repo.QueryActiveStudents(ctx, class, section)
	if err != nil {
		return nil, core.NewRetryableError(errors.Wrap(err, "querying roster"))
	}

	roster := make([]Student, 0, len(students))
	for _, s := range students {
		if s.IsActive() {
			roster = append(roster, s)
		}
	}
	sort.SliceStable(roster, func(i, j int) bool { return roster[i].Less(roster[j]) })
	return roster, nil
}

// Import validates and saves students; students without an ID get a new one.
func (svc *Service) Import(ctx context.Context, nss []NewStudent) ([]Student, error) {
	batch := importBatch{Students: nss}
	if err := batch.Validate(svc.validate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	students := make([]Student, 0, len(batch.Students))
	for _, ns := range batch.Students {
		s := Student{
			ID:              ns.ID,
			Name:            ns.Name,
			RollNumber:      ns.RollNumber,
			AdmissionNumber: ns.AdmissionNumber,
			Class:           ns.Class,
			Section:         ns.Section,
			Status:          ns.Status,
			Photo:           ns.Photo,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		if s.Status == "" {
			s.Status = StatusActive
		}
		students = append(students, s)
	}

	if err := svc.repo.UpsertStudents(ctx, students...); err != nil {
		return nil, errors.Wrap(err, "saving students")
	}
	return students, nil
}
