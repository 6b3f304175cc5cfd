package core

import "strings"

// DBOrdering is a single ordering term shared by every storage engine.
// Field is the stored (snake_case) field name.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderByClause builds a SQL ORDER BY clause, only keeping fields listed in `allowed`.
func OrderByClause(allowed map[string]bool, orderings ...DBOrdering) string {
	terms := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if allowed[ord.Field] {
			terms = append(terms, ord.String())
		}
	}
	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}
