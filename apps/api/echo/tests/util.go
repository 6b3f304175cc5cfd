package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/masomo-attendance/apps/api/echo"
	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/attendance"
	"github.com/trezcool/masomo-attendance/core/student"
	emailsvc "github.com/trezcool/masomo-attendance/services/email"
	"github.com/trezcool/masomo-attendance/storage"
	"github.com/trezcool/masomo-attendance/tests"
)

const pageSize = 2

var reportRecipient = mail.Address{Name: "Principal", Address: "principal@test.cd"}

type testApp struct {
	server   Server
	students student.Repository
	mailer   *emailsvc.ConsoleServiceMock
}

type setupOption func(*attendance.Deps)

func withSheets(repo attendance.SheetRepository) setupOption {
	return func(deps *attendance.Deps) { deps.Sheets = repo }
}

func setup(t *testing.T, opts ...setupOption) testApp {
	t.Helper()

	conf := &core.Config{AppName: "Masomo", TestMode: true}
	conf.Attendance.PageSize = pageSize

	logger := testutil.NewLogger(t)
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	store := storage.NewMemoryStore()
	mailer := emailsvc.NewConsoleServiceMock(conf)

	stdSvc := student.NewService(store.Students, validate)
	deps := attendance.Deps{
		Roster:   stdSvc,
		Sheets:   store.Sheets,
		Validate: validate,
		Logger:   logger,
		Mailer:   mailer,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	attSvc := attendance.NewService(deps, attendance.Options{ReportRecipients: []mail.Address{reportRecipient}})

	server := NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Students:   stdSvc,
			Attendance: attSvc,
			Translator: translator,
		},
	)
	return testApp{server: server, students: store.Students, mailer: mailer}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func (app testApp) do(method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	app.server.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarchallObj(t *testing.T, data []byte, obj interface{}) {
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("unmarchallObj() failed: %v; data %s", err, data)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
