package attendance

import (
	"encoding/csv"
	"io"
	"strings"
)

var exportHeader = []string{"Admission No", "Roll No", "Student Name", "Status", "Class", "Section", "Date"}

// ToTable turns records into export rows, one per record, in the same order.
func ToTable(records []Record, date string) []ExportRow {
	rows := make([]ExportRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ExportRow{
			AdmissionNo: rec.AdmissionNo,
			RollNo:      rec.RollNumber,
			Name:        rec.Name,
			Status:      strings.ToUpper(string(rec.Status)),
			Class:       rec.Class,
			Section:     rec.Section,
			Date:        date,
		})
	}
	return rows
}

// WriteCSV writes the header line followed by rows.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.AdmissionNo, row.RollNo, row.Name, row.Status, row.Class, row.Section, row.Date}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename returns "attendance-{class}-{section}-{date}.csv".
func ExportFilename(key SheetKey) string {
	return "attendance-" + key.Class + "-" + key.Section + "-" + key.Date + ".csv"
}

// Export writes every record of ws matching the filter and search, across all pages.
func Export(w io.Writer, ws *WorkingSet, status StatusFilter, search string) error {
	return WriteCSV(w, ToTable(Filter(ws.records, status, search), ws.key.Date))
}
