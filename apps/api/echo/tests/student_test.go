package tests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-attendance/core/student"
)

func Test_home(t *testing.T) {
	app := setup(t)

	rec := app.do(http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Masomo Attendance API!", rec.Body.String())
}

func Test_studentApi_roster(t *testing.T) {
	app := setup(t)
	seedRoster(t, app)

	tests := []struct {
		name    string
		class   string
		section string
		wantIDs []string
	}{
		{name: "ordered by roll number", class: "5", section: "A", wantIDs: []string{"s1", "s2", "s3"}},
		{name: "other section", class: "5", section: " B ", wantIDs: []string{"s4"}},
		{name: "unknown section", class: "5", section: "C", wantIDs: []string{}},
		{name: "no section selected", class: "5", wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := url.Values{"class": {tt.class}, "section": {tt.section}}
			rec := app.do(http.MethodGet, "/v1/students/roster?"+params.Encode())
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var students []student.Student
			unmarchallObj(t, rec.Body.Bytes(), &students)
			ids := make([]string, 0, len(students))
			for _, s := range students {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
