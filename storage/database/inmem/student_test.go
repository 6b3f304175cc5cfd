package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-attendance/core/student"
)

func TestStudentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository(Open())
	created := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertStudents(ctx,
		student.Student{ID: "s1", Name: "Amani", RollNumber: "1", Class: "5", Section: "A", Status: student.StatusActive, CreatedAt: created},
		student.Student{ID: "s2", Name: "Baraka", RollNumber: "2", Class: "5", Section: "A", Status: student.StatusInactive},
		student.Student{ID: "s3", Name: "Neema", RollNumber: "1", Class: "5", Section: "B", Status: student.StatusActive},
	))

	got, err := repo.QueryActiveStudents(ctx, "5", "A")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)

	// upsert keeps the creation date
	require.NoError(t, repo.UpsertStudents(ctx,
		student.Student{ID: "s1", Name: "Amani Juma", RollNumber: "1", Class: "5", Section: "A", Status: student.StatusActive, CreatedAt: time.Now()},
	))
	got, err = repo.QueryActiveStudents(ctx, "5", "A")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Amani Juma", got[0].Name)
	assert.Equal(t, created, got[0].CreatedAt)

	got, err = repo.QueryActiveStudents(ctx, "6", "A")
	require.NoError(t, err)
	assert.Empty(t, got)
}
