// Package table implements the tabular dataset passed between pipeline
// steps: named columns, string-valued cells, and the handful of
// transformations the steps need (null filtering, text normalization,
// train/test splitting, categorical encoding).
//
// No invariant is enforced on raw data; after the cleaning step the
// required fields of every row are non-null.
package table

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// Table is an in-memory tabular dataset. Rows are stored in input order.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// isNull reports whether a cell holds no usable value.
func isNull(cell string) bool {
	return strings.TrimSpace(cell) == ""
}

// DropNullRows returns a copy of the table without the rows that have a
// null value in any of the required fields, plus the number of rows
// dropped. The row count never increases.
func (t *Table) DropNullRows(required []string) (*Table, int, error) {
	indices := make([]int, 0, len(required))
	for _, name := range required {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			return nil, 0, fmt.Errorf("required field %q is not a column of the dataset", name)
		}
		indices = append(indices, idx)
	}

	out := &Table{Columns: t.Columns}
	dropped := 0
rows:
	for _, row := range t.Rows {
		for _, idx := range indices {
			if isNull(row[idx]) {
				dropped++
				continue rows
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, dropped, nil
}

// NormalizeText lowercases and trims the cells of the named columns in place.
func (t *Table) NormalizeText(fields []string) error {
	for _, name := range fields {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			return fmt.Errorf("normalize field %q is not a column of the dataset", name)
		}
		for _, row := range t.Rows {
			row[idx] = strings.ToLower(strings.TrimSpace(row[idx]))
		}
	}
	return nil
}

// Split partitions the rows into train and test tables. The test table
// receives round(testFraction * n) rows chosen by a seeded shuffle, so the
// two outputs always partition the input exactly with no overlap.
func (t *Table) Split(testFraction float64, seed uint64) (train, test *Table, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0, 1), got %g", testFraction)
	}

	n := len(t.Rows)
	testCount := int(math.Round(testFraction * float64(n)))

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	inTest := make([]bool, n)
	for _, idx := range perm[:testCount] {
		inTest[idx] = true
	}

	train = &Table{Columns: t.Columns}
	test = &Table{Columns: t.Columns}
	for i, row := range t.Rows {
		if inTest[i] {
			test.Rows = append(test.Rows, row)
		} else {
			train.Rows = append(train.Rows, row)
		}
	}
	return train, test, nil
}
