// Package dataset holds the historical per-city trip tables the predictor
// walks. Tables are loaded once at startup and never mutated afterwards.
package dataset

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Column names the service relies on.
const (
	ColumnBus            = "bus"
	ColumnCrowd          = "crowd"
	ColumnTraffic        = "traffic"
	ColumnUserExperience = "user_experience"
)

// Condition labels used when a table has no column for a feature.
const (
	DefaultCrowd          = "Medium"
	DefaultTraffic        = "Low"
	DefaultUserExperience = "Good"
)

var stopColumnPattern = regexp.MustCompile(`^stop(\d+)_time$`)

// StopColumn is one per-stop arrival-time column.
type StopColumn struct {
	Name  string
	Index int // the N parsed from stop<N>_time
	pos   int
}

// Table is an immutable header + rows view of one city dataset.
type Table struct {
	City    string
	Columns []string
	Rows    [][]string

	index       map[string]int
	stopColumns []StopColumn
}

// NewTable builds a table and normalizes its schema once: the column index and
// the ordered stop columns are computed here and never again.
func NewTable(city string, columns []string, rows [][]string) *Table {
	t := &Table{
		City:    city,
		Columns: columns,
		Rows:    rows,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	t.stopColumns = DiscoverStopColumns(columns)
	return t
}

// DiscoverStopColumns returns the stop<N>_time columns sorted by N ascending.
// The ordering defines which stops are adjacent.
func DiscoverStopColumns(columns []string) []StopColumn {
	var out []StopColumn
	for pos, c := range columns {
		m := stopColumnPattern.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, StopColumn{Name: c, Index: n, pos: pos})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) Empty() bool { return t.Len() == 0 }

func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

// StopColumns returns the ordered stop columns. Callers must not modify the slice.
func (t *Table) StopColumns() []StopColumn {
	return t.stopColumns
}

// Value returns the cell at (row, column). ok is false when the column does
// not exist; a short row yields "" with ok true.
func (t *Table) Value(row int, column string) (string, bool) {
	pos, ok := t.index[column]
	if !ok {
		return "", false
	}
	return t.cell(row, pos), true
}

func (t *Table) cell(row, pos int) string {
	r := t.Rows[row]
	if pos >= len(r) {
		return ""
	}
	return r[pos]
}

// Column returns every value of a column, or nil if it does not exist.
func (t *Table) Column(name string) []string {
	pos, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.cell(i, pos)
	}
	return out
}

// ParseBusID accepts integer bus identifiers, including integral floats such
// as "12.0" that spreadsheet exports produce.
func ParseBusID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// BusIDs returns the distinct parseable bus identifiers, ascending.
func (t *Table) BusIDs() []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, v := range t.Column(ColumnBus) {
		id, ok := ParseBusID(v)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// RowsForBus returns the indexes of the rows belonging to bus, in row order.
func (t *Table) RowsForBus(bus int) []int {
	var rows []int
	for i, v := range t.Column(ColumnBus) {
		if id, ok := ParseBusID(v); ok && id == bus {
			rows = append(rows, i)
		}
	}
	return rows
}

// TripRecord is one historical journey of a bus: one dataset row.
type TripRecord struct {
	City           string
	BusID          int
	Row            int
	StopTimes      []string // raw clock strings, one per ordered stop column
	Crowd          string
	Traffic        string
	UserExperience string
}

// Trip materializes row as a TripRecord using the given ordered stop columns.
func (t *Table) Trip(bus, row int, stops []StopColumn) TripRecord {
	times := make([]string, len(stops))
	for i, sc := range stops {
		times[i] = t.cell(row, sc.pos)
	}
	return TripRecord{
		City:           t.City,
		BusID:          bus,
		Row:            row,
		StopTimes:      times,
		Crowd:          t.valueOr(row, ColumnCrowd, DefaultCrowd),
		Traffic:        t.valueOr(row, ColumnTraffic, DefaultTraffic),
		UserExperience: t.valueOr(row, ColumnUserExperience, DefaultUserExperience),
	}
}

func (t *Table) valueOr(row int, column, def string) string {
	v, ok := t.Value(row, column)
	if !ok {
		return def
	}
	return v
}
