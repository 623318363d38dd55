package analysis

import (
	"fmt"
	"sort"
	"time"
)

// Row is a Record with its derived calendar keys
type Row struct {
	Record
	Day   time.Time
	Week  ISOWeek
	Month MonthKey
}

func newRow(r Record) Row {
	day := DayOf(r.SessionDate)
	r.SessionDate = day
	return Row{
		Record: r,
		Day:    day,
		Week:   WeekOf(day),
		Month:  MonthOf(day),
	}
}

// Table is an immutable snapshot of normalized records, one row per
// identity. Every operation that narrows a table returns a new one, so a
// Table can be shared between concurrent readers.
type Table struct {
	rows    []Row
	dropped int
}

// NewTable builds a table from already-merged records. A second record for
// an existing identity is rejected; use FromRecords to merge instead.
func NewTable(records []Record) (*Table, error) {
	seen := make(map[Identity]struct{}, len(records))
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		row := newRow(r)
		id := row.Identity()
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateIdentity, id)
		}
		seen[id] = struct{}{}
		rows = append(rows, row)
	}
	sortRows(rows)
	return &Table{rows: rows}, nil
}

// FromRecords merges submissions sharing an identity (later ones are newer)
// and builds a table from the result.
func FromRecords(records []Record) *Table {
	t, _ := NewTable(MergeRecords(records))
	return t
}

// MergeRecords collapses records with the same identity, in order. The
// result keeps the position of each identity's first appearance.
func MergeRecords(records []Record) []Record {
	index := make(map[Identity]int, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		r.SessionDate = DayOf(r.SessionDate)
		id := r.Identity()
		if i, ok := index[id]; ok {
			out[i] = out[i].Merge(r)
			continue
		}
		index[id] = len(out)
		out = append(out, r.clone())
	}
	return out
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Day.Equal(rows[j].Day) {
			return rows[i].Day.Before(rows[j].Day)
		}
		if rows[i].AthleteID != rows[j].AthleteID {
			return rows[i].AthleteID < rows[j].AthleteID
		}
		return rows[i].Shift < rows[j].Shift
	})
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Dropped returns how many raw inputs could not be keyed during normalization
func (t *Table) Dropped() int {
	if t == nil {
		return 0
	}
	return t.dropped
}

// Rows returns a copy of the rows, ordered by day, athlete and shift
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Filter returns a new table with the rows for which keep returns true
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{}
	if t == nil {
		return out
	}
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// CheckIns returns rows carrying at least one wellness score
func (t *Table) CheckIns() *Table {
	return t.Filter(func(r Row) bool { return r.HasCheckIn() })
}

// CheckOuts returns rows carrying session load data
func (t *Table) CheckOuts() *Table {
	return t.Filter(func(r Row) bool { return r.HasCheckOut() })
}

// ForAthlete returns the rows of one athlete
func (t *Table) ForAthlete(athleteID string) *Table {
	return t.Filter(func(r Row) bool { return r.AthleteID == athleteID })
}

// Between returns rows whose day falls in [start, end]; a zero bound is open
func (t *Table) Between(start, end time.Time) *Table {
	return t.Filter(func(r Row) bool {
		if !start.IsZero() && r.Day.Before(DayOf(start)) {
			return false
		}
		if !end.IsZero() && r.Day.After(DayOf(end)) {
			return false
		}
		return true
	})
}

// MaxDay returns the latest day present, and false for an empty table
func (t *Table) MaxDay() (time.Time, bool) {
	if t.Empty() {
		return time.Time{}, false
	}
	return t.rows[len(t.rows)-1].Day, true
}

// Days returns the distinct days present, ascending
func (t *Table) Days() []time.Time {
	var days []time.Time
	for _, r := range t.Rows() {
		if n := len(days); n == 0 || !days[n-1].Equal(r.Day) {
			days = append(days, r.Day)
		}
	}
	return days
}

// Athletes returns the distinct athlete ids, sorted
func (t *Table) Athletes() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range t.Rows() {
		if _, ok := seen[r.AthleteID]; ok {
			continue
		}
		seen[r.AthleteID] = struct{}{}
		ids = append(ids, r.AthleteID)
	}
	sort.Strings(ids)
	return ids
}

// AthleteNames maps athlete id to the most recent non-empty name
func (t *Table) AthleteNames() map[string]string {
	names := make(map[string]string)
	for _, r := range t.Rows() {
		if r.AthleteName != "" {
			names[r.AthleteID] = r.AthleteName
		}
	}
	return names
}
