package attendance

import "math"

// Aggregate counts the records per status. Percentages are rounded and are 0 without records.
func Aggregate(records []Record) Summary {
	sum := Summary{Total: len(records)}
	for _, rec := range records {
		switch rec.Status {
		case StatusPresent:
			sum.Present++
		case StatusAbsent:
			sum.Absent++
		}
	}
	sum.PresentPct = percent(sum.Present, sum.Total)
	sum.AbsentPct = percent(sum.Absent, sum.Total)
	return sum
}

func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
