package ententes

import (
	"cmp"
	"sort"
	"strconv"
	"strings"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
)

// DefaultSortField is the column lists are ordered by until the user picks another.
const DefaultSortField = "dateCreation"

// SortState is the single active sort column of a list view.
type SortState struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// DefaultSort orders by creation date, newest first.
func DefaultSort() SortState {
	return SortState{Field: DefaultSortField, Desc: true}
}

// ParseSort builds a SortState from query values, falling back to DefaultSort.
func ParseSort(field, dir string) SortState {
	field = strings.TrimSpace(field)
	if field == "" {
		return DefaultSort()
	}
	return SortState{Field: field, Desc: strings.EqualFold(strings.TrimSpace(dir), "desc")}
}

// Toggle handles a click on a column header: the same column flips direction,
// another column becomes active in ascending order.
func (s SortState) Toggle(field string) SortState {
	if field == s.Field {
		return SortState{Field: field, Desc: !s.Desc}
	}
	return SortState{Field: field, Desc: false}
}

// Direction renders the state as "asc" or "desc".
func (s SortState) Direction() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// Compare orders two raw column values. Columns whose name contains "date" are
// compared as dates; values that fail to parse sort after valid ones. Numeric
// values compare numerically, everything else case-insensitively.
func Compare(field, a, b string) int {
	if isDate(field) {
		return compareDates(a, b)
	}
	if fa, errA := strconv.ParseFloat(a, 64); errA == nil {
		if fb, errB := strconv.ParseFloat(b, 64); errB == nil {
			return cmp.Compare(fa, fb)
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareDates(a, b string) int {
	ta, errA := models.ParseTimestamp(a)
	tb, errB := models.ParseTimestamp(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	return ta.Compare(tb.Time)
}

// SortRows orders rows in place according to state. The sort is stable and
// rows without a usable date stay last in both directions.
func SortRows(rows []Row, state SortState) {
	if state.Field == "" {
		state = DefaultSort()
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].SortValue(state.Field), rows[j].SortValue(state.Field)
		if isDate(state.Field) {
			validA, validB := validDate(a), validDate(b)
			if validA != validB {
				return validA
			}
		}
		c := Compare(state.Field, a, b)
		if state.Desc {
			return c > 0
		}
		return c < 0
	})
}

func isDate(field string) bool {
	return strings.Contains(strings.ToLower(field), "date")
}

func validDate(value string) bool {
	_, err := models.ParseTimestamp(value)
	return err == nil
}
