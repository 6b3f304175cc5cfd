package attendance

// WorkingSet is the editable attendance of a selected class section.
// It is owned by a single caller and is not safe for concurrent use.
type WorkingSet struct {
	key        SheetKey
	records    []Record
	index      map[string]int // {studentID: position in records}
	version    uint64
	submission Submission
}

func newWorkingSet(key SheetKey, capacity int) *WorkingSet {
	return &WorkingSet{
		key:     key,
		records: make([]Record, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

func (ws *WorkingSet) add(rec Record) bool {
	if _, ok := ws.index[rec.StudentID]; ok {
		return false
	}
	ws.index[rec.StudentID] = len(ws.records)
	ws.records = append(ws.records, rec)
	return true
}

func (ws *WorkingSet) Key() SheetKey { return ws.key }

// Records returns a copy of the records in roster order.
func (ws *WorkingSet) Records() []Record {
	recs := make([]Record, len(ws.records))
	copy(recs, ws.records)
	return recs
}

func (ws *WorkingSet) Len() int { return len(ws.records) }

// Record returns the record of studentID.
func (ws *WorkingSet) Record(studentID string) (Record, bool) {
	idx, ok := ws.index[studentID]
	if !ok {
		return Record{}, false
	}
	return ws.records[idx], true
}

// Version increases with every mutation.
func (ws *WorkingSet) Version() uint64 { return ws.version }

// Submission returns the last known submission; it is zero for a sheet never submitted.
func (ws *WorkingSet) Submission() Submission { return ws.submission }

// SetStatus changes the status of exactly one record.
func (ws *WorkingSet) SetStatus(studentID string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	idx, ok := ws.index[studentID]
	if !ok {
		return ErrStudentNotInWorkingSet
	}
	ws.records[idx].Status = status
	ws.version++
	return nil
}

// SetAllStatus changes the status of every record.
func (ws *WorkingSet) SetAllStatus(status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	for i := range ws.records {
		ws.records[i].Status = status
	}
	ws.version++
	return nil
}

func (ws *WorkingSet) Summary() Summary { return Aggregate(ws.records) }

func (ws *WorkingSet) View(params ViewParams) Page { return View(ws.records, params) }

func (ws *WorkingSet) markSubmitted(sheet Sheet) {
	ws.submission = Submission{
		SubmittedBy:   sheet.SubmittedBy,
		SubmittedName: sheet.SubmittedName,
		SubmittedAt:   sheet.SubmittedAt,
		LastUpdated:   sheet.LastUpdated,
	}
}
