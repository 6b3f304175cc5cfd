package tests

import (
	"os"
	"testing"
	"time"

	"github.com/trezcool/masomo-attendance/core/attendance"
)

var now = time.Date(2026, time.October, 18, 8, 30, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	attendance.NowFunc = func() time.Time { return now }
	os.Exit(m.Run())
}
