package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-attendance/core/attendance"
)

type sheetRow struct {
	ID            string         `db:"id"`
	Date          string         `db:"date"`
	Class         string         `db:"class"`
	Section       string         `db:"section"`
	Records       types.JSONText `db:"records"`
	TotalStudents int            `db:"total_students"`
	PresentCount  int            `db:"present_count"`
	AbsentCount   int            `db:"absent_count"`
	SubmittedBy   string         `db:"submitted_by"`
	SubmittedName string         `db:"submitted_name"`
	SubmittedAt   time.Time      `db:"submitted_at"`
	LastUpdated   time.Time      `db:"last_updated"`
}

func newSheetRow(sheet attendance.Sheet) (sheetRow, error) {
	records := sheet.Records
	if records == nil {
		records = []attendance.Record{}
	}
	js, err := json.Marshal(records)
	if err != nil {
		return sheetRow{}, errors.Wrap(err, "encoding records")
	}
	return sheetRow{
		ID:            sheet.ID,
		Date:          sheet.Date,
		Class:         sheet.Class,
		Section:       sheet.Section,
		Records:       types.JSONText(js),
		TotalStudents: sheet.TotalStudents,
		PresentCount:  sheet.PresentCount,
		AbsentCount:   sheet.AbsentCount,
		SubmittedBy:   sheet.SubmittedBy,
		SubmittedName: sheet.SubmittedName,
		SubmittedAt:   sheet.SubmittedAt,
		LastUpdated:   sheet.LastUpdated,
	}, nil
}

func (r sheetRow) toSheet() (attendance.Sheet, error) {
	sheet := attendance.Sheet{
		ID:            r.ID,
		Date:          r.Date,
		Class:         r.Class,
		Section:       r.Section,
		TotalStudents: r.TotalStudents,
		PresentCount:  r.PresentCount,
		AbsentCount:   r.AbsentCount,
		SubmittedBy:   r.SubmittedBy,
		SubmittedName: r.SubmittedName,
		SubmittedAt:   r.SubmittedAt.UTC(),
		LastUpdated:   r.LastUpdated.UTC(),
	}
	if err := r.Records.Unmarshal(&sheet.Records); err != nil {
		return attendance.Sheet{}, errors.Wrap(err, "decoding records")
	}
	return sheet, nil
}

type sheetRepository struct {
	db *sqlx.DB
}

var _ attendance.SheetRepository = (*sheetRepository)(nil)

func NewSheetRepository(db *sqlx.DB) attendance.SheetRepository {
	return &sheetRepository{db: db}
}

func (repo *sheetRepository) FindSheet(ctx context.Context, id string) (attendance.Sheet, error) {
	q := `SELECT id, date, class, section, records, total_students, present_count, absent_count,
		submitted_by, submitted_name, submitted_at, last_updated
		FROM attendance_sheets WHERE id = $1`

	var row sheetRow
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Sheet{}, attendance.ErrSheetNotFound
		}
		return attendance.Sheet{}, errors.Wrap(err, "selecting attendance sheet")
	}
	return row.toSheet()
}

func (repo *sheetRepository) UpsertSheet(ctx context.Context, sheet attendance.Sheet) error {
	row, err := newSheetRow(sheet)
	if err != nil {
		return err
	}

	q := `INSERT INTO attendance_sheets (id, date, class, section, records, total_students, present_count,
			absent_count, submitted_by, submitted_name, submitted_at, last_updated)
		VALUES (:id, :date, :class, :section, :records, :total_students, :present_count,
			:absent_count, :submitted_by, :submitted_name, :submitted_at, :last_updated)
		ON CONFLICT (id) DO UPDATE SET
			records = EXCLUDED.records,
			total_students = EXCLUDED.total_students,
			present_count = EXCLUDED.present_count,
			absent_count = EXCLUDED.absent_count,
			submitted_by = EXCLUDED.submitted_by,
			submitted_name = EXCLUDED.submitted_name,
			submitted_at = EXCLUDED.submitted_at,
			last_updated = EXCLUDED.last_updated`

	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return errors.Wrap(err, "upserting attendance sheet")
	}
	return nil
}

func (repo *sheetRepository) DeleteSheet(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM attendance_sheets WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting attendance sheet")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting attendance sheet")
	}
	if n == 0 {
		return attendance.ErrSheetNotFound
	}
	return nil
}
