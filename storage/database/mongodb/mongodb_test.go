package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-attendance/core/attendance"
	"github.com/trezcool/masomo-attendance/core/student"
)

// prepareDB connects to a throwaway database of TEST_MONGODB_URI, dropped after the test.
func prepareDB(t *testing.T) *DB {
	t.Helper()
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	ctx := context.Background()
	db, err := open(ctx, uri, "masomo_test_"+uuid.New().String()[:8], 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, db.EnsureIndexes(ctx))
	t.Cleanup(func() {
		_ = db.db.Drop(ctx)
		_ = db.Close(ctx)
	})
	return db
}

func TestStudentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository(prepareDB(t))
	created := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertStudents(ctx,
		student.Student{ID: "s10", Name: "Juma", RollNumber: "10", Class: "5", Section: "A", Status: student.StatusActive, CreatedAt: created, UpdatedAt: created},
		student.Student{ID: "s2", Name: "Amani", RollNumber: "2", AdmissionNumber: "ADM-2", Class: "5", Section: "A", Status: student.StatusActive, CreatedAt: created, UpdatedAt: created},
		student.Student{ID: "s3", Name: "Baraka", RollNumber: "3", Class: "5", Section: "A", Status: student.StatusInactive, CreatedAt: created, UpdatedAt: created},
	))

	got, err := repo.QueryActiveStudents(ctx, "5", "A")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].ID) // numeric ordering: 2 before 10
	assert.Equal(t, "ADM-2", got[0].AdmissionNumber)
	assert.Equal(t, "s10", got[1].ID)

	later := created.Add(time.Hour)
	require.NoError(t, repo.UpsertStudents(ctx,
		student.Student{ID: "s2", Name: "Amani Juma", RollNumber: "2", Class: "5", Section: "A", Status: student.StatusActive, CreatedAt: later, UpdatedAt: later},
	))
	got, err = repo.QueryActiveStudents(ctx, "5", "A")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Amani Juma", got[0].Name)
	assert.Empty(t, got[0].AdmissionNumber)
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
			{StudentID: "s2", Name: "Amani", RollNumber: "2", AdmissionNo: "ADM-2", Class: "5", Section: "A", Status: attendance.StatusPresent},
			{StudentID: "s10", Name: "Juma", RollNumber: "10", Class: "5", Section: "A", Status: attendance.StatusAbsent},
		},
		TotalStudents: 2, PresentCount: 1, AbsentCount: 1,
		SubmittedBy: "t1", SubmittedName: "Mwalimu Zawadi", SubmittedAt: now, LastUpdated: now,
	}
	require.NoError(t, repo.UpsertSheet(ctx, sheet))
	got, err := repo.FindSheet(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, sheet, got)

	sheet.Records[1].Status = attendance.StatusPresent
	sheet.PresentCount, sheet.AbsentCount = 2, 0
	sheet.LastUpdated = now.Add(time.Second)
	require.NoError(t, repo.UpsertSheet(ctx, sheet))
	got, err = repo.FindSheet(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, sheet, got)

	require.NoError(t, repo.DeleteSheet(ctx, sheet.ID))
	assert.Equal(t, attendance.ErrSheetNotFound, repo.DeleteSheet(ctx, sheet.ID))
}
