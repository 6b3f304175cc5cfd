package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/student"
)

var validate = core.NewValidator(core.NewTranslator())

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type rosterStub struct {
	mu       sync.Mutex
	students map[string][]student.Student // {class-section: roster}
	err      error
	calls    []string
	wait     chan struct{} // when set, Roster blocks until closed or ctx is done
}

func (r *rosterStub) Roster(ctx context.Context, class, section string) ([]student.Student, error) {
	r.mu.Lock()
	r.calls = append(r.calls, "roster:"+class+"-"+section)
	wait, err := r.wait, r.err
	roster := r.students[class+"-"+section]
	r.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, core.NewRetryableError(err)
	}
	return roster, nil
}

type sheetStub struct {
	mu        sync.Mutex
	sheets    map[string]Sheet
	findErr   error
	upsertErr error
	upserts   int
	wait      chan struct{} // when set, UpsertSheet blocks until closed
}

func newSheetStub(sheets ...Sheet) *sheetStub {
	stub := &sheetStub{sheets: make(map[string]Sheet)}
	for _, s := range sheets {
		stub.sheets[s.ID] = s
	}
	return stub
}

func (r *sheetStub) FindSheet(_ context.Context, id string) (Sheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return Sheet{}, r.findErr
	}
	s, ok := r.sheets[id]
	if !ok {
		return Sheet{}, ErrSheetNotFound
	}
	return s, nil
}

func (r *sheetStub) UpsertSheet(_ context.Context, sheet Sheet) error {
	r.mu.Lock()
	wait := r.wait
	r.mu.Unlock()
	if wait != nil {
		<-wait
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts++
	r.sheets[sheet.ID] = sheet
	return nil
}

func (r *sheetStub) DeleteSheet(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sheets[id]; !ok {
		return ErrSheetNotFound
	}
	delete(r.sheets, id)
	return nil
}

type mailerStub struct {
	mu   sync.Mutex
	sent []core.EmailMessage
}

func (m *mailerStub) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		if err := msg.Render(); err != nil {
			panic(err)
		}
		m.sent = append(m.sent, *msg)
	}
}

func newTestService(roster RosterProvider, sheets SheetRepository, mailer core.EmailService, opts ...Options) *Service {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	return NewService(Deps{
		Roster:   roster,
		Sheets:   sheets,
		Validate: validate,
		Logger:   nopLogger{},
		Mailer:   mailer,
	}, o)
}

func stud(id, name, roll string) student.Student {
	return student.Student{
		ID:              id,
		Name:            name,
		RollNumber:      roll,
		AdmissionNumber: "ADM-" + roll,
		Class:           "5",
		Section:         "A",
		Status:          student.StatusActive,
	}
}

func rec(id string, status Status) Record {
	return Record{StudentID: id, Name: "name " + id, RollNumber: id, Class: "5", Section: "A", Status: status}
}

func fixedNow(t time.Time) func() {
	NowFunc = func() time.Time { return t }
	return func() { NowFunc = time.Now }
}

