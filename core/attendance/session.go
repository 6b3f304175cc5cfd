package attendance

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
)

var ErrSubmitting = errors.New("attendance is being submitted")

type State int

// Session states
const (
	StateNoSelection State = iota
	StateRosterLoaded
	StateReconciled
	StateEditing
	StateFiltered
	StateSubmitting
	StateSubmitted
	StateSubmitFailed
)

var stateNames = map[State]string{
	StateNoSelection:  "no selection",
	StateRosterLoaded: "roster loaded",
	StateReconciled:   "reconciled",
	StateEditing:      "editing",
	StateFiltered:     "filtered",
	StateSubmitting:   "submitting",
	StateSubmitted:    "submitted",
	StateSubmitFailed: "submit failed",
}

func (s State) String() string { return stateNames[s] }

// Session takes the attendance of one class section at a time.
// Its methods may be called from several goroutines; only loading and submitting wait on the network.
type Session struct {
	svc *Service

	mu      sync.Mutex
	state   State
	key     SheetKey
	ws      *WorkingSet
	params  ViewParams
	seq     uint64 // incremented by every Select
	cancel  context.CancelFunc
	lastErr error

	summary        Summary
	summaryVersion uint64
	summaryCached  bool
}

func NewSession(svc *Service, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Session{
		svc:    svc,
		state:  StateNoSelection,
		params: ViewParams{Status: FilterAll, Page: 1, PageSize: pageSize},
	}
}

// Select loads the attendance of key: roster first, then the stored sheet, then reconciles them.
// An empty class or section clears the selection. A load that is overtaken by a later Select
// is dropped with ErrSelectionSuperseded. When loading fails the previous selection is kept.
func (s *Session) Select(ctx context.Context, key SheetKey) error {
	key = NewSheetKey(key.Date, key.Class, key.Section)

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if !key.Selected() {
		s.key = key
		s.ws = nil
		s.state = StateNoSelection
		s.params.Page = 1
		s.summaryCached = false
		s.mu.Unlock()
		return nil
	}
	if err := s.svc.ValidateKey(key); err != nil {
		s.mu.Unlock()
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	prevState := s.state
	s.mu.Unlock()
	defer cancel()

	roster, err := s.svc.roster.Roster(ctx, key.Class, key.Section)
	if err = s.stage(seq, err, StateRosterLoaded, prevState); err != nil {
		return err
	}
	sheet, err := s.svc.FetchSheet(ctx, key)
	if err = s.stage(seq, err, StateRosterLoaded, prevState); err != nil {
		return err
	}
	ws := Reconcile(key, roster, sheet)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		return ErrSelectionSuperseded
	}
	s.cancel = nil
	s.key = key
	s.ws = ws
	s.state = StateReconciled
	s.params = ViewParams{Status: FilterAll, Page: 1, PageSize: s.params.PageSize}
	s.summaryCached = false
	s.lastErr = nil
	return nil
}

// stage records the progress of the load seq, or restores prevState if it failed.
func (s *Session) stage(seq uint64, err error, next, prevState State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		return ErrSelectionSuperseded
	}
	if err != nil {
		s.cancel = nil
		s.state = prevState
		s.lastErr = err
		return err
	}
	s.state = next
	return nil
}

func (s *Session) editable() error {
	if s.ws == nil {
		return ErrNoSelection
	}
	if s.state == StateSubmitting {
		return ErrSubmitting
	}
	return nil
}

func (s *Session) SetStatus(studentID string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if err := s.ws.SetStatus(studentID, status); err != nil {
		return err
	}
	s.state = StateEditing
	return nil
}

func (s *Session) SetAllStatus(status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if err := s.ws.SetAllStatus(status); err != nil {
		return err
	}
	s.state = StateEditing
	return nil
}

// SetFilter changes the status filter and goes back to the first page.
func (s *Session) SetFilter(filter StatusFilter) error {
	if filter == "" {
		filter = FilterAll
	}
	if _, err := ParseStatusFilter(string(filter)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.params.Status = filter
	s.params.Page = 1
	s.state = StateFiltered
	return nil
}

// SetSearch changes the search text and goes back to the first page.
func (s *Session) SetSearch(search string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.params.Search = search
	s.params.Page = 1
	s.state = StateFiltered
	return nil
}

// SetPage moves to page, clamped to the pages of the current view, and returns that page.
func (s *Session) SetPage(page int) Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Page = page
	return s.view()
}

// View returns the current page of the working set.
func (s *Session) View() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() Page {
	var records []Record
	if s.ws != nil {
		records = s.ws.records
	}
	p := View(records, s.params)
	s.params.Page = p.Page
	p.Records = append([]Record(nil), p.Records...)
	return p
}

// Find returns the record whose student ID, or else roll number, is ref.
func (s *Session) Find(ref string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws == nil {
		return Record{}, false
	}
	if rec, ok := s.ws.Record(ref); ok {
		return rec, true
	}
	for _, rec := range s.ws.records {
		if rec.RollNumber == ref {
			return rec, true
		}
	}
	return Record{}, false
}

// Summary returns the counts of the whole working set, ignoring filters.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws == nil {
		return Aggregate(nil)
	}
	if !s.summaryCached || s.summaryVersion != s.ws.Version() {
		s.summary = s.ws.Summary()
		s.summaryVersion = s.ws.Version()
		s.summaryCached = true
	}
	return s.summary
}

// Export writes the records of the current view, all pages included, as CSV.
func (s *Session) Export(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws == nil {
		return ErrNoSelection
	}
	return Export(w, s.ws, s.params.Status, s.params.Search)
}

// Submit saves the working set. On failure the edits are kept and Submit may be called again.
func (s *Session) Submit(ctx context.Context, actor Actor) (string, error) {
	s.mu.Lock()
	if err := s.editable(); err != nil {
		s.mu.Unlock()
		return "", err
	}
	ws, seq := s.ws, s.seq
	s.state = StateSubmitting
	s.mu.Unlock()

	sheet, err := s.svc.save(ctx, ws, actor)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		ws.markSubmitted(sheet)
	}
	if s.seq != seq {
		// another class section was selected meanwhile
		return sheet.ID, err
	}
	if err != nil {
		s.state = StateSubmitFailed
		s.lastErr = err
		return "", err
	}
	s.state = StateSubmitted
	s.lastErr = nil
	return sheet.ID, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Key() SheetKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

func (s *Session) Params() ViewParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Submission returns what is known about the last submission of the selection.
func (s *Session) Submission() Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws == nil {
		return Submission{}
	}
	return s.ws.Submission()
}

// Err returns the error of the last failed load or submission.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close cancels any load in progress.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
