package core

import "strings"

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

// OrderingColumns maps the orderable fields of a resource (as exposed to clients) to their DB columns.
type OrderingColumns map[string]string

// Clean keeps the orderings on known fields, translated to their columns.
func (cols OrderingColumns) Clean(orderings []DBOrdering) []DBOrdering {
	cleaned := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if col, ok := cols[ord.Field]; ok {
			cleaned = append(cleaned, DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	return cleaned
}

// OrderBy renders an ORDER BY clause, falling back to `fallback` when there is nothing to order by.
func OrderBy(orderings []DBOrdering, fallback string) string {
	if len(orderings) == 0 {
		return " ORDER BY " + fallback
	}
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
