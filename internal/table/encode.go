package table

import (
	"fmt"
	"strconv"
)

// Encoding maps the categorical columns of a dataset to numeric codes. One
// Encoding is fitted on the training table and applied to both partitions,
// so train and test share a single code table.
type Encoding struct {
	Target   string
	Features []string

	// codes holds, per categorical column, the value-to-code mapping.
	// Columns absent from the map are numeric and pass through unchanged.
	codes map[string]map[string]float64
}

// NewEncoding inspects the table and decides, per non-target column,
// whether it is numeric or categorical. A column is numeric when every one
// of its cells parses as a float.
func NewEncoding(t *Table, target string) (*Encoding, error) {
	if _, ok := t.ColumnIndex(target); !ok {
		return nil, fmt.Errorf("target field %q is not a column of the dataset", target)
	}

	e := &Encoding{
		Target: target,
		codes:  make(map[string]map[string]float64),
	}

	for i, col := range t.Columns {
		if col == target {
			continue
		}
		e.Features = append(e.Features, col)

		numeric := true
		for _, row := range t.Rows {
			if _, err := strconv.ParseFloat(row[i], 64); err != nil {
				numeric = false
				break
			}
		}
		if !numeric {
			e.codes[col] = make(map[string]float64)
		}
	}
	return e, nil
}

// Transform converts the table into a feature matrix and a target vector.
// Categorical values are replaced by their codes; values not seen before
// extend the shared code table.
func (e *Encoding) Transform(t *Table) (x [][]float64, y []float64, err error) {
	targetIdx, ok := t.ColumnIndex(e.Target)
	if !ok {
		return nil, nil, fmt.Errorf("target field %q is not a column of the dataset", e.Target)
	}

	featureIdx := make([]int, len(e.Features))
	for i, name := range e.Features {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			return nil, nil, fmt.Errorf("feature field %q is not a column of the dataset", name)
		}
		featureIdx[i] = idx
	}

	x = make([][]float64, 0, len(t.Rows))
	y = make([]float64, 0, len(t.Rows))
	for rowNum, row := range t.Rows {
		label, err := strconv.ParseFloat(row[targetIdx], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: target %q is not numeric: %w", rowNum, row[targetIdx], err)
		}

		features := make([]float64, len(e.Features))
		for i, name := range e.Features {
			cell := row[featureIdx[i]]
			if codeTable, categorical := e.codes[name]; categorical {
				code, seen := codeTable[cell]
				if !seen {
					code = float64(len(codeTable))
					codeTable[cell] = code
				}
				features[i] = code
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: field %q value %q is not numeric", rowNum, name, cell)
			}
			features[i] = v
		}

		x = append(x, features)
		y = append(y, label)
	}
	return x, y, nil
}
