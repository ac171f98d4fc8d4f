// Package table holds a loaded registry sheet as raw strings and provides
// the header normalization, key validation and grouping steps applied
// before any household document is built.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKeyMissing reports that the grouping column is absent after header
// normalization.
var ErrKeyMissing = errors.New("grouping key column missing")

// DefaultNAValues are the cell markers treated as missing, matching the
// markers pandas recognises by default when reading delimited text.
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null",
}

// Table is an in-memory sheet: a header row and the records below it.
// Every cell is kept verbatim as a string.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

func New(columns []string, rows [][]string) *Table {
	t := &Table{Columns: columns, Rows: rows}
	t.reindex()
	return t
}

// reindex maps each column name to its position. When two columns share a
// name the last one wins.
func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c] = i
	}
}

// NormalizeHeader trims surrounding whitespace and upper-cases a column name.
func NormalizeHeader(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NormalizeHeaders rewrites every column name with NormalizeHeader and
// returns the names that now occur more than once, in first-seen order.
func (t *Table) NormalizeHeaders() []string {
	seen := make(map[string]int, len(t.Columns))
	var dups []string
	for i, c := range t.Columns {
		n := NormalizeHeader(c)
		t.Columns[i] = n
		seen[n]++
		if seen[n] == 2 {
			dups = append(dups, n)
		}
	}
	t.reindex()
	return dups
}

// Has reports whether col is one of the table's columns.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// ValidateKey fails with ErrKeyMissing when key is not a column.
func (t *Table) ValidateKey(key string) error {
	if !t.Has(key) {
		return fmt.Errorf("%w: %q not in %q", ErrKeyMissing, key, t.Columns)
	}
	return nil
}

// FillDefaults pads short records to the header width and blanks every
// cell equal to one of naValues, so later lookups always see a string.
func (t *Table) FillDefaults(naValues []string) {
	na := make(map[string]struct{}, len(naValues))
	for _, v := range naValues {
		na[v] = struct{}{}
	}
	for i, rec := range t.Rows {
		if len(rec) < len(t.Columns) {
			padded := make([]string, len(t.Columns))
			copy(padded, rec)
			rec = padded
			t.Rows[i] = rec
		}
		for j, v := range rec {
			if _, ok := na[v]; ok {
				rec[j] = ""
			}
		}
	}
}

// Row is a read-only view of one record.
type Row struct {
	t     *Table
	cells []string
}

func (t *Table) Row(i int) Row { return Row{t: t, cells: t.Rows[i]} }

// Get returns the cell under col, or "" when the column or cell is absent.
func (r Row) Get(col string) string {
	i, ok := r.t.index[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// Lookup is Get plus whether the column exists at all.
func (r Row) Lookup(col string) (string, bool) {
	if !r.t.Has(col) {
		return "", false
	}
	return r.Get(col), true
}

// Group is every row sharing one key value, in input order.
type Group struct {
	Key  string
	Rows []Row
}

// GroupBy partitions rows by the value under key. Groups follow the order
// in which each key first appears; rows with an empty key are dropped and
// counted in skipped.
func (t *Table) GroupBy(key string) (groups []Group, skipped int) {
	pos := make(map[string]int)
	for i := range t.Rows {
		r := t.Row(i)
		k := r.Get(key)
		if k == "" {
			skipped++
			continue
		}
		gi, ok := pos[k]
		if !ok {
			gi = len(groups)
			pos[k] = gi
			groups = append(groups, Group{Key: k})
		}
		groups[gi].Rows = append(groups[gi].Rows, r)
	}
	return groups, skipped
}
