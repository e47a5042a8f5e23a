/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package execution

import (
	"fmt"
	"strings"

	"github.com/suparena/datacheck/errors"
)

// Frame is an in-memory columnar table. All columns have the same length.
type Frame struct {
	id      string
	columns []string
	data    map[string][]any
	rows    int
}

// NewFrame builds a Frame from a header and row-major values.
func NewFrame(id string, columns []string, rows [][]any) (*Frame, error) {
	f := &Frame{
		id:      id,
		columns: append([]string(nil), columns...),
		data:    make(map[string][]any, len(columns)),
		rows:    len(rows),
	}
	for _, c := range columns {
		if _, dup := f.data[c]; dup {
			return nil, errors.NewValidationError("columns", fmt.Sprintf("duplicate column %q", c))
		}
		f.data[c] = make([]any, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.NewValidationError("rows", fmt.Sprintf("row %d has %d values, want %d", i, len(row), len(columns)))
		}
		for j, c := range columns {
			f.data[c][i] = row[j]
		}
	}
	return f, nil
}

// FrameFromColumns builds a Frame from column-major data. Column order
// follows the order of names.
func FrameFromColumns(id string, names []string, cols map[string][]any) (*Frame, error) {
	f := &Frame{id: id, data: make(map[string][]any, len(cols)), rows: -1}
	for _, name := range names {
		values, ok := cols[name]
		if !ok {
			return nil, errors.NewValidationError("columns", fmt.Sprintf("no data for column %q", name))
		}
		if f.rows >= 0 && len(values) != f.rows {
			return nil, errors.NewValidationError("columns", fmt.Sprintf("column %q has %d values, want %d", name, len(values), f.rows))
		}
		f.rows = len(values)
		f.columns = append(f.columns, name)
		f.data[name] = append([]any(nil), values...)
	}
	if f.rows < 0 {
		f.rows = 0
	}
	return f, nil
}

func (f *Frame) ID() string        { return f.id }
func (f *Frame) Kind() BackendKind { return BackendMemory }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// RowCount returns the number of rows.
func (f *Frame) RowCount() int {
	return f.rows
}

// Column returns the values of a column. The returned slice must not be modified.
func (f *Frame) Column(name string) ([]any, error) {
	values, ok := f.data[name]
	if !ok {
		return nil, errors.NewNotFoundError("column", name)
	}
	return values, nil
}

// WithID returns a shallow copy of the frame carrying another batch id.
func (f *Frame) WithID(id string) *Frame {
	cp := *f
	cp.id = id
	return &cp
}

// Filter returns the rows whose value in each constrained column equals one
// of the allowed values. Constraints are AND-combined across columns,
// OR-combined within a column. Comparison is on the textual form, case-insensitive.
func (f *Frame) Filter(constraints map[string][]any) (*Frame, error) {
	if len(constraints) == 0 {
		return f, nil
	}
	sets := make(map[string]map[string]bool, len(constraints))
	for col, allowed := range constraints {
		if _, ok := f.data[col]; !ok {
			return nil, errors.NewNotFoundError("column", col)
		}
		set := make(map[string]bool, len(allowed))
		for _, v := range allowed {
			set[normalize(v)] = true
		}
		sets[col] = set
	}

	indices := make([]int, 0, f.rows)
	for i := 0; i < f.rows; i++ {
		pass := true
		for col, set := range sets {
			if !set[normalize(f.data[col][i])] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}
	return f.take(indices), nil
}

// Split divides the frame into n contiguous partitions of near-equal size.
func (f *Frame) Split(n int) []*Frame {
	if n <= 1 || f.rows <= 1 {
		return []*Frame{f}
	}
	if n > f.rows {
		n = f.rows
	}
	parts := make([]*Frame, 0, n)
	size := (f.rows + n - 1) / n
	for start := 0; start < f.rows; start += size {
		end := start + size
		if end > f.rows {
			end = f.rows
		}
		indices := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			indices = append(indices, i)
		}
		parts = append(parts, f.take(indices))
	}
	return parts
}

func (f *Frame) take(indices []int) *Frame {
	out := &Frame{
		id:      f.id,
		columns: f.columns,
		data:    make(map[string][]any, len(f.data)),
		rows:    len(indices),
	}
	for col, values := range f.data {
		sub := make([]any, len(indices))
		for i, idx := range indices {
			sub[i] = values[idx]
		}
		out.data[col] = sub
	}
	return out
}

func normalize(v any) string {
	if v == nil {
		return ""
	}
	return strings.ToLower(fmt.Sprint(v))
}
