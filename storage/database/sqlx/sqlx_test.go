package sqlxrepos

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-attendance/core/attendance"
	"github.com/trezcool/masomo-attendance/core/student"
	"github.com/trezcool/masomo-attendance/storage/database"
)

// prepareDB migrates the database of TEST_DATABASE_URL and empties it after the test.
func prepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db.DB))
	t.Cleanup(func() {
		_, _ = db.Exec("TRUNCATE students, attendance_sheets")
		_ = db.Close()
	})
	return db
}

func TestStudentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository(prepareDB(t))
	created := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertStudents(ctx,
		student.Student{ID: "s2", Name: "Amani", RollNumber: "2", AdmissionNumber: "ADM-2", Class: "5", Section: "A", Status: student.StatusActive, CreatedAt: created, UpdatedAt: created},
		student.Student{ID: "s3", Name: "Baraka", RollNumber: "3", Class: "5", Section: "A", Status: student.StatusInactive, CreatedAt: created, UpdatedAt: created},
		student.Student{ID: "s4", Name: "Chausiku", RollNumber: "4", Class: "5", Section: "A", Status: student.StatusActive, CreatedAt: created, UpdatedAt: created},
	))

	got, err := repo.QueryActiveStudents(ctx, "5", "A")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].ID)
	assert.Equal(t, "ADM-2", got[0].AdmissionNumber)
	assert.Equal(t, "", got[1].AdmissionNumber)

	later := created.Add(time.Hour)
	require.NoError(t, repo.UpsertStudents(ctx,
		student.Student{ID: "s4", Name: "Chausiku W.", RollNumber: "4", Class: "5", Section: "A", Status: student.StatusInactive, CreatedAt: later, UpdatedAt: later},
	))
	got, err = repo.QueryActiveStudents(ctx, "5", "A")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].CreatedAt.Equal(created))
}

func TestSheetRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSheetRepository(prepareDB(t))
	now := time.Now().UTC().Truncate(time.Millisecond)

	_, err := repo.FindSheet(ctx, "2024-03-01-5-A")
	assert.Equal(t, attendance.ErrSheetNotFound, err)

	sheet := attendance.Sheet{
		ID: "2024-03-01-5-A", Date: "2024-03-01", Class: "5", Section: "A",
		Records: []attendance.Record{
			{StudentID: "s2", Name: "Amani", RollNumber: "2", AdmissionNo: "ADM-2", Class: "5", Section: "A", Status: attendance.StatusAbsent},
		},
		TotalStudents: 1, AbsentCount: 1,
		SubmittedBy: "t1", SubmittedName: "Mwalimu Zawadi", SubmittedAt: now, LastUpdated: now,
	}
	require.NoError(t, repo.UpsertSheet(ctx, sheet))
	got, err := repo.FindSheet(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, sheet.Records, got.Records)
	assert.True(t, got.LastUpdated.Equal(now))

	sheet.Records[0].Status = attendance.StatusPresent
	sheet.PresentCount, sheet.AbsentCount = 1, 0
	sheet.LastUpdated = now.Add(time.Millisecond)
	require.NoError(t, repo.UpsertSheet(ctx, sheet))
	got, err = repo.FindSheet(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PresentCount)
	assert.Equal(t, attendance.StatusPresent, got.Records[0].Status)
	assert.True(t, got.LastUpdated.After(now))

	require.NoError(t, repo.DeleteSheet(ctx, sheet.ID))
	assert.Equal(t, attendance.ErrSheetNotFound, repo.DeleteSheet(ctx, sheet.ID))
}
