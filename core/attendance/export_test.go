package attendance

import (
	"bytes"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	records := []Record{
		{StudentID: "id1", Name: "Amani Juma", RollNumber: "1", AdmissionNo: "ADM-001", Class: "5", Section: "A", Status: StatusAbsent},
		{StudentID: "id2", Name: "Otieno, Baraka", RollNumber: "2", Class: "5", Section: "A", Status: StatusPresent},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ToTable(records, "2024-03-01")); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "Admission No,Roll No,Student Name,Status,Class,Section,Date\n" +
		"ADM-001,1,Amani Juma,ABSENT,5,A,2024-03-01\n" +
		",2,\"Otieno, Baraka\",PRESENT,5,A,2024-03-01\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteCSV_noRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ToTable(nil, "2024-03-01")); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got, want := buf.String(), "Admission No,Roll No,Student Name,Status,Class,Section,Date\n"; got != want {
		t.Errorf("WriteCSV() = %q, want %q", got, want)
	}
}

func TestExport_wholeFilteredSet(t *testing.T) {
	ws := newWS()
	_ = ws.SetStatus("id1", StatusAbsent)
	_ = ws.SetStatus("id3", StatusAbsent)

	var buf bytes.Buffer
	if err := Export(&buf, ws, FilterAbsent, ""); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	want := "Admission No,Roll No,Student Name,Status,Class,Section,Date\n" +
		"ADM-1,1,Amani,ABSENT,5,A,2024-03-01\n" +
		"ADM-3,3,Chausiku,ABSENT,5,A,2024-03-01\n"
	if got := buf.String(); got != want {
		t.Errorf("Export() =\n%s\nwant\n%s", got, want)
	}
}

func TestExportFilename(t *testing.T) {
	if got, want := ExportFilename(NewSheetKey("2024-03-01", "5", "A")), "attendance-5-A-2024-03-01.csv"; got != want {
		t.Errorf("ExportFilename() = %q, want %q", got, want)
	}
}
