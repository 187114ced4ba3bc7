package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
)

// Table is a rectangular table of string cells with named columns.
//
// The zero value is an empty table with no columns. Use [NewTable] to build
// a table with a validated schema.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable creates a table from a header and rows.
// It returns an error if column names are empty or duplicated, or if any row
// has a different width than the header.
func NewTable(columns []string, rows [][]string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "" {
			return nil, cferrors.New(cferrors.ErrCodeInvalidInput, "column %d has an empty name", i)
		}
		if _, dup := index[c]; dup {
			return nil, cferrors.New(cferrors.ErrCodeInvalidInput, "duplicate column %q", c)
		}
		index[c] = i
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, cferrors.New(cferrors.ErrCodeInvalidInput,
				"row %d has %d fields, want %d", i+1, len(r), len(columns))
		}
	}
	return &Table{Columns: columns, Rows: rows, index: index}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of a column and whether it exists.
func (t *Table) Index(col string) (int, bool) {
	if t.index == nil {
		// Literal tables carry no index. Lookups must not write to t.
		for i, c := range t.Columns {
			if c == col {
				return i, true
			}
		}
		return 0, false
	}
	i, ok := t.index[col]
	return i, ok
}

// HasColumn reports whether col is part of the schema.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.Index(col)
	return ok
}

// Column resolves a column name or returns an UNKNOWN_COLUMN error.
func (t *Table) Column(col string) (int, error) {
	i, ok := t.Index(col)
	if !ok {
		return 0, cferrors.New(cferrors.ErrCodeUnknownColumn, "unknown column %q", col)
	}
	return i, nil
}

// Value returns the cell at row r of column col.
func (t *Table) Value(r int, col string) (string, error) {
	i, err := t.Column(col)
	if err != nil {
		return "", err
	}
	if r < 0 || r >= len(t.Rows) {
		return "", cferrors.New(cferrors.ErrCodeInvalidInput, "row %d out of range", r)
	}
	return t.Rows[r][i], nil
}

// Filter returns the rows whose value in col equals value.
// The returned table shares row storage with t.
func (t *Table) Filter(col, value string) (*Table, error) {
	i, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r[i] == value {
			rows = append(rows, r)
		}
	}
	return &Table{Columns: t.Columns, Rows: rows, index: t.index}, nil
}

// Select returns a table restricted to cols, in the given order.
func (t *Table) Select(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for j, c := range cols {
		i, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		idx[j] = i
	}
	rows := make([][]string, len(t.Rows))
	for k, r := range t.Rows {
		out := make([]string, len(idx))
		for j, i := range idx {
			out[j] = r[i]
		}
		rows[k] = out
	}
	return NewTable(append([]string(nil), cols...), rows)
}

// UniqueValues returns the distinct values of col in first-seen order.
func (t *Table) UniqueValues(col string) ([]string, error) {
	i, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Rows {
		if !seen[r[i]] {
			seen[r[i]] = true
			out = append(out, r[i])
		}
	}
	return out, nil
}

// Page returns the rows of a 1-based page of the given size along with the
// total number of pages. Pages past the end are empty.
func (t *Table) Page(page, size int) ([][]string, int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	n := len(t.Rows)
	pages := n / size
	if n%size != 0 {
		pages++
	}
	if page > pages {
		return [][]string{}, pages
	}
	start := (page - 1) * size
	end := start + min(size, n-start)
	return t.Rows[start:end], pages
}

// Checksum returns a SHA-256 digest of the schema and every cell.
// It identifies a table's content for cache keys.
func (t *Table) Checksum() string {
	h := sha256.New()
	for _, c := range t.Columns {
		fmt.Fprintf(h, "%d:%s", len(c), c)
	}
	h.Write([]byte{'\n'})
	for _, r := range t.Rows {
		for _, v := range r {
			fmt.Fprintf(h, "%d:%s", len(v), v)
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
