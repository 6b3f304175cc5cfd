package attendance

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/student"
)

func newTestSession(t *testing.T) (*Session, *rosterStub, *sheetStub) {
	t.Helper()
	roster := &rosterStub{students: map[string][]student.Student{
		"5-A": {stud("id1", "Amani", "1"), stud("id2", "Baraka", "2"), stud("id3", "Chausiku", "3")},
		"6-B": {stud("id9", "Zuberi", "9")},
	}}
	sheets := newSheetStub()
	return NewSession(newTestService(roster, sheets, nil), 2), roster, sheets
}

func TestSession_flow(t *testing.T) {
	ctx := context.Background()
	s, _, sheets := newTestSession(t)
	if s.State() != StateNoSelection {
		t.Fatalf("initial state = %s", s.State())
	}

	if err := s.Select(ctx, NewSheetKey("2024-03-01", "5", "A")); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if s.State() != StateReconciled {
		t.Errorf("Select() state = %s, want %s", s.State(), StateReconciled)
	}
	if p := s.View(); p.TotalFiltered != 3 || p.TotalPages != 2 || len(p.Records) != 2 {
		t.Errorf("View() = %+v", p)
	}

	if err := s.SetStatus("id3", StatusAbsent); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if s.State() != StateEditing {
		t.Errorf("SetStatus() state = %s, want %s", s.State(), StateEditing)
	}
	if sum := s.Summary(); sum.Absent != 1 || sum.Present != 2 {
		t.Errorf("Summary() = %+v", sum)
	}

	if p := s.SetPage(9); p.Page != 2 || len(p.Records) != 1 || p.Records[0].StudentID != "id3" {
		t.Errorf("SetPage(9) = %+v", p)
	}
	if err := s.SetFilter(FilterPresent); err != nil {
		t.Fatalf("SetFilter() error = %v", err)
	}
	if s.State() != StateFiltered || s.Params().Page != 1 {
		t.Errorf("SetFilter() state = %s page = %d", s.State(), s.Params().Page)
	}
	if err := s.SetFilter("late"); err != ErrInvalidFilter {
		t.Errorf("SetFilter() error = %v, wantErr %v", err, ErrInvalidFilter)
	}
	s.SetPage(2)
	if err := s.SetSearch("baraka"); err != nil {
		t.Fatalf("SetSearch() error = %v", err)
	}
	if p := s.View(); p.Page != 1 || p.TotalFiltered != 1 || p.Records[0].StudentID != "id2" {
		t.Errorf("View() after search = %+v", p)
	}

	var buf bytes.Buffer
	if err := s.Export(&buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(buf.String()), "\n"); len(lines) != 2 || !strings.Contains(lines[1], "Baraka") {
		t.Errorf("Export() = %q", buf.String())
	}

	// failing store: edits are kept for a retry
	sheets.upsertErr = errStore
	if _, err := s.Submit(ctx, staff); !core.IsRetryable(err) {
		t.Fatalf("Submit() error = %v, want retryable", err)
	}
	if s.State() != StateSubmitFailed || s.Summary().Absent != 1 {
		t.Errorf("Submit() state = %s summary = %+v", s.State(), s.Summary())
	}

	sheets.upsertErr = nil
	id, err := s.Submit(ctx, staff)
	if err != nil {
		t.Fatalf("Submit() retry error = %v", err)
	}
	if s.State() != StateSubmitted || sheets.sheets[id].AbsentCount != 1 {
		t.Errorf("Submit() state = %s stored = %+v", s.State(), sheets.sheets[id])
	}
	if s.Submission().SubmittedBy != staff.ID {
		t.Errorf("Submission() = %+v", s.Submission())
	}

	if err = s.SetAllStatus(StatusAbsent); err != nil {
		t.Fatalf("SetAllStatus() error = %v", err)
	}
	if sum := s.Summary(); sum.Present != 0 || sum.Absent != 3 {
		t.Errorf("Summary() after SetAllStatus = %+v", sum)
	}
	if s.State() != StateEditing {
		t.Errorf("SetAllStatus() state = %s", s.State())
	}
}

func TestSession_clearSelection(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)
	_ = s.Select(ctx, NewSheetKey("2024-03-01", "5", "A"))

	if err := s.Select(ctx, NewSheetKey("2024-03-01", "5", "")); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if s.State() != StateNoSelection {
		t.Errorf("Select() state = %s, want %s", s.State(), StateNoSelection)
	}
	if p := s.View(); p.TotalFiltered != 0 || len(p.Records) != 0 {
		t.Errorf("View() = %+v, want nothing", p)
	}
	if err := s.SetStatus("id1", StatusAbsent); err != ErrNoSelection {
		t.Errorf("SetStatus() error = %v, wantErr %v", err, ErrNoSelection)
	}
	if _, err := s.Submit(ctx, staff); err != ErrNoSelection {
		t.Errorf("Submit() error = %v, wantErr %v", err, ErrNoSelection)
	}
}

func TestSession_fetchErrorKeepsSelection(t *testing.T) {
	ctx := context.Background()
	s, roster, sheets := newTestSession(t)
	key := NewSheetKey("2024-03-01", "5", "A")
	_ = s.Select(ctx, key)
	_ = s.SetStatus("id2", StatusAbsent)

	roster.err = errStore
	if err := s.Select(ctx, NewSheetKey("2024-03-01", "6", "B")); !core.IsRetryable(err) {
		t.Fatalf("Select() error = %v, want retryable", err)
	}
	roster.err = nil
	sheets.findErr = errStore
	if err := s.Select(ctx, NewSheetKey("2024-03-01", "6", "B")); !core.IsRetryable(err) {
		t.Fatalf("Select() error = %v, want retryable", err)
	}

	if s.Key() != key || s.State() != StateEditing || s.Summary().Absent != 1 {
		t.Errorf("Select() lost the selection: key = %v state = %s summary = %+v", s.Key(), s.State(), s.Summary())
	}
	if s.Err() == nil {
		t.Error("Err() = nil after a failed load")
	}
}

func TestSession_supersededSelection(t *testing.T) {
	ctx := context.Background()
	s, roster, _ := newTestSession(t)

	roster.wait = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- s.Select(ctx, NewSheetKey("2024-03-01", "5", "A")) }()

	// wait for the first load to reach the roster
	deadline := time.Now().Add(2 * time.Second)
	for {
		roster.mu.Lock()
		n := len(roster.calls)
		roster.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first Select() never fetched the roster")
		}
		time.Sleep(5 * time.Millisecond)
	}

	roster.mu.Lock()
	roster.wait = nil
	roster.mu.Unlock()
	if err := s.Select(ctx, NewSheetKey("2024-03-01", "6", "B")); err != nil {
		t.Fatalf("second Select() error = %v", err)
	}

	select {
	case err := <-done:
		if err != ErrSelectionSuperseded {
			t.Errorf("first Select() error = %v, wantErr %v", err, ErrSelectionSuperseded)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first Select() was not cancelled")
	}

	if got := s.Key(); got.Class != "6" || got.Section != "B" {
		t.Errorf("Key() = %v, want 6/B", got)
	}
	if p := s.View(); p.TotalFiltered != 1 || p.Records[0].StudentID != "id9" {
		t.Errorf("View() = %+v, want [id9]", p)
	}
}

func TestSession_summaryIsCachedPerVersion(t *testing.T) {
	s, _, _ := newTestSession(t)
	_ = s.Select(context.Background(), NewSheetKey("2024-03-01", "5", "A"))

	first := s.Summary()
	s.mu.Lock()
	cachedVersion := s.summaryVersion
	s.mu.Unlock()
	if first.Present != 3 || cachedVersion != 0 {
		t.Fatalf("Summary() = %+v (version %d)", first, cachedVersion)
	}

	_ = s.SetStatus("id1", StatusAbsent)
	if got := s.Summary(); got.Present != 2 || got.Absent != 1 {
		t.Errorf("Summary() = %+v after an edit", got)
	}
}

func TestSession_Find(t *testing.T) {
	s, _, _ := newTestSession(t)
	if _, ok := s.Find("id1"); ok {
		t.Errorf("Find() before Select found a record")
	}
	if err := s.Select(context.Background(), NewSheetKey("2024-03-01", "5", "A")); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	tests := []struct {
		name   string
		ref    string
		wantID string
		wantOk bool
	}{
		{name: "by id", ref: "id2", wantID: "id2", wantOk: true},
		{name: "by roll number", ref: "3", wantID: "id3", wantOk: true},
		{name: "unknown", ref: "id9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := s.Find(tt.ref)
			if ok != tt.wantOk || rec.StudentID != tt.wantID {
				t.Errorf("Find(%q) = %v, %v; want %v, %v", tt.ref, rec.StudentID, ok, tt.wantID, tt.wantOk)
			}
		})
	}
}

func TestSession_submissionReadsDuringSubmit(t *testing.T) {
	ctx := context.Background()
	s, _, sheets := newTestSession(t)
	if err := s.Select(ctx, NewSheetKey("2024-03-01", "5", "A")); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	wait := make(chan struct{})
	sheets.mu.Lock()
	sheets.wait = wait
	sheets.mu.Unlock()

	type result struct {
		id  string
		err error
	}
	done := make(chan result, 1)
	go func() {
		id, err := s.Submit(ctx, staff)
		done <- result{id, err}
	}()

	for s.State() != StateSubmitting {
		time.Sleep(time.Millisecond)
	}
	if err := s.SetStatus("id1", StatusAbsent); err != ErrSubmitting {
		t.Errorf("SetStatus() while submitting error = %v, wantErr %v", err, ErrSubmitting)
	}
	close(wait)

	// reads race with the end of the submission
	var res result
	for reading := true; reading; {
		_ = s.Submission()
		_ = s.Summary()
		select {
		case res = <-done:
			reading = false
		default:
		}
	}
	if res.err != nil {
		t.Fatalf("Submit() error = %v", res.err)
	}
	if sub := s.Submission(); sub.SubmittedBy != staff.ID || sub.LastUpdated.IsZero() {
		t.Errorf("Submission() after Submit = %+v", sub)
	}
	if s.State() != StateSubmitted {
		t.Errorf("Submit() state = %s, want %s", s.State(), StateSubmitted)
	}
}
