// Package chart turns tabular rows into renderer-agnostic chart options.
//
// The pipeline is: Classify the dataset's columns, Resolve a default field
// Mapping for a chart family, then build a ChartOption with the variant
// registered for the chart type. Every step is pure and never fails on data
// irregularities; only an unknown chart type is rejected.
package chart

// Row maps a column name to a scalar: a number, string, bool or nil.
// A missing key reads as nil.
type Row map[string]any

// Dataset is an ordered set of rows sharing one declared column list.
// Columns follow the key order of the first row as delivered by the source.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewDataset returns a dataset with non-nil column and row slices.
func NewDataset(columns []string, rows []Row) Dataset {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = []Row{}
	}
	return Dataset{Columns: columns, Rows: rows}
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// HasColumn reports whether name is a declared column.
func (d Dataset) HasColumn(name string) bool {
	return containsString(d.Columns, name)
}

// Clone returns a copy whose slices and rows can be modified independently.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Columns: append([]string{}, d.Columns...),
		Rows:    make([]Row, len(d.Rows)),
	}
	for i, r := range d.Rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Head returns the first n rows of the dataset, or all of them if n is larger.
func (d Dataset) Head(n int) Dataset {
	if n < 0 || n >= len(d.Rows) {
		return d
	}
	return Dataset{Columns: d.Columns, Rows: d.Rows[:n]}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
