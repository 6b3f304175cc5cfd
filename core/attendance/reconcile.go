package attendance

import (
	"github.com/trezcool/masomo-attendance/core/student"
)

// Reconcile merges the roster with the existing sheet of key (nil if none).
//
// Records follow the roster order. A student already on the sheet keeps the stored record
// (status, name and numbers as they were marked, even an unknown status, which Submit
// rejects until it is corrected); a new student is marked present.
// Students no longer on the roster are dropped and duplicate roster entries are merged.
// Every record takes the class and section of key.
func Reconcile(key SheetKey, roster []student.Student, existing *Sheet) *WorkingSet {
	stored := make(map[string]Record)
	if existing != nil {
		for _, rec := range existing.Records {
			if _, ok := stored[rec.StudentID]; !ok {
				stored[rec.StudentID] = rec
			}
		}
	}

	ws := newWorkingSet(key, len(roster))
	for _, s := range roster {
		rec, ok := stored[s.ID]
		if !ok {
			rec = Record{
				StudentID:   s.ID,
				Name:        s.Name,
				RollNumber:  s.RollNumber,
				AdmissionNo: s.AdmissionNumber,
				Status:      StatusPresent,
			}
		}
		rec.Class, rec.Section = key.Class, key.Section
		ws.add(rec)
	}

	if existing != nil {
		ws.markSubmitted(*existing)
	}
	return ws
}
