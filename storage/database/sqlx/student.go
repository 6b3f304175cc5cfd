package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/student"
)

var studentOrderings = map[string]bool{"roll_number": true, "name": true}

type studentRow struct {
	ID              string      `db:"id"`
	Name            string      `db:"name"`
	RollNumber      string      `db:"roll_number"`
	AdmissionNumber null.String `db:"admission_number"`
	Class           string      `db:"class"`
	Section         string      `db:"section"`
	Status          string      `db:"status"`
	Photo           null.String `db:"photo"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func newStudentRow(s student.Student) studentRow {
	return studentRow{
		ID:              s.ID,
		Name:            s.Name,
		RollNumber:      s.RollNumber,
		AdmissionNumber: null.NewString(s.AdmissionNumber, s.AdmissionNumber != ""),
		Class:           s.Class,
		Section:         s.Section,
		Status:          s.Status,
		Photo:           null.NewString(s.Photo, s.Photo != ""),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (r studentRow) toStudent() student.Student {
	return student.Student{
		ID:              r.ID,
		Name:            r.Name,
		RollNumber:      r.RollNumber,
		AdmissionNumber: r.AdmissionNumber.String,
		Class:           r.Class,
		Section:         r.Section,
		Status:          r.Status,
		Photo:           r.Photo.String,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) QueryActiveStudents(ctx context.Context, class, section string) ([]student.Student, error) {
	q := `SELECT id, name, roll_number, admission_number, class, section, status, photo, created_at, updated_at
		FROM students WHERE class = $1 AND section = $2 AND status = $3` +
		core.OrderByClause(studentOrderings, student.RosterOrdering...)

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, q, class, section, student.StatusActive); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) UpsertStudents(ctx context.Context, students ...student.Student) error {
	if len(students) == 0 {
		return nil
	}

	q := `INSERT INTO students (id, name, roll_number, admission_number, class, section, status, photo, created_at, updated_at)
		VALUES (:id, :name, :roll_number, :admission_number, :class, :section, :status, :photo, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			roll_number = EXCLUDED.roll_number,
			admission_number = EXCLUDED.admission_number,
			class = EXCLUDED.class,
			section = EXCLUDED.section,
			status = EXCLUDED.status,
			photo = EXCLUDED.photo,
			updated_at = EXCLUDED.updated_at`

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, q)
	if err != nil {
		return errors.Wrap(err, "preparing students upsert")
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range students {
		if _, err = stmt.ExecContext(ctx, newStudentRow(s)); err != nil {
			return errors.Wrapf(err, "upserting student %s", s.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "committing students")
}
