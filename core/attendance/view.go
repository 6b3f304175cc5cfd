package attendance

import (
	"math"
	"strings"
)

// DefaultPageSize is used when ViewParams.PageSize is not positive.
const DefaultPageSize = 10

// Filter returns the records matching the status filter and containing search
// (case-insensitive) in their name, roll number or admission number.
func Filter(records []Record, status StatusFilter, search string) []Record {
	search = strings.ToLower(strings.TrimSpace(search))
	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if !status.match(rec.Status) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(rec.Name), search) &&
			!strings.Contains(strings.ToLower(rec.RollNumber), search) &&
			!strings.Contains(strings.ToLower(rec.AdmissionNo), search) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// View filters records then returns the requested page of the result.
// An out-of-range page is clamped to the nearest valid one.
func View(records []Record, params ViewParams) Page {
	filtered := Filter(records, params.Status, params.Search)

	size := params.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(filtered)
	totalPages := 1
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(size)))
	}

	page := params.Page
	if page < 1 {
		page = 1
	} else if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	return Page{
		Records:       filtered[start:end],
		TotalFiltered: total,
		Page:          page,
		PageSize:      size,
		TotalPages:    totalPages,
		HasPrev:       page > 1,
		HasNext:       page < totalPages,
	}
}
