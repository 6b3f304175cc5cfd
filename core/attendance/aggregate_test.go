package attendance

import "testing"

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    Summary
	}{
		{name: "empty", want: Summary{}},
		{
			name:    "all present",
			records: []Record{rec("1", StatusPresent), rec("2", StatusPresent)},
			want:    Summary{Total: 2, Present: 2, PresentPct: 100},
		},
		{
			name:    "rounded",
			records: []Record{rec("1", StatusPresent), rec("2", StatusPresent), rec("3", StatusAbsent)},
			want:    Summary{Total: 3, Present: 2, Absent: 1, PresentPct: 67, AbsentPct: 33},
		},
		{
			name:    "half",
			records: []Record{rec("1", StatusAbsent), rec("2", StatusPresent)},
			want:    Summary{Total: 2, Present: 1, Absent: 1, PresentPct: 50, AbsentPct: 50},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.records)
			if got != tt.want {
				t.Errorf("Aggregate() = %+v, want %+v", got, tt.want)
			}
			if got.Present+got.Absent != got.Total || got.Total != len(tt.records) {
				t.Errorf("Aggregate() counts do not add up: %+v", got)
			}
		})
	}
}
