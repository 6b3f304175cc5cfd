package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/student"
)

// CreateStudent saves an active student with admission number "ADM-<roll>".
func CreateStudent(
	t *testing.T,
	repo student.Repository,
	id, name, roll, class, section string,
	createdAt ...time.Time,
) student.Student {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	s := student.Student{
		ID:              id,
		Name:            name,
		RollNumber:      roll,
		AdmissionNumber: "ADM-" + roll,
		Class:           class,
		Section:         section,
		Status:          student.StatusActive,
		CreatedAt:       tstamp,
		UpdatedAt:       tstamp,
	}
	if err := repo.UpsertStudents(context.Background(), s); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

type testLogger struct {
	t *testing.T
}

var _ core.Logger = (*testLogger)(nil)

// NewLogger returns a logger writing to the test log.
func NewLogger(t *testing.T) core.Logger {
	return &testLogger{t: t}
}

func (l testLogger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	if len(args) > 0 {
		msg += " " + fmt.Sprint(args...)
	}
	l.t.Logf("%s: %s", level, msg)
}

func (l testLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args) }
