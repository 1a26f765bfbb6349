package chart

// ColumnKind is the inferred type of a column.
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindText    ColumnKind = "text"
)

// Classification maps column names to their inferred kind. An empty
// classification means "unknown": callers fall back to positional defaults.
type Classification map[string]ColumnKind

// Classify infers a kind for every declared column from its representative
// value, the first non-nil value reading rows top-down. This is a best-effort
// heuristic and never fails; an empty dataset yields an empty classification.
func Classify(ds Dataset) Classification {
	if len(ds.Rows) == 0 {
		return Classification{}
	}

	out := make(Classification, len(ds.Columns))
	for _, col := range ds.Columns {
		if _, ok := ParseNumber(representative(ds.Rows, col)); ok {
			out[col] = KindNumeric
		} else {
			out[col] = KindText
		}
	}
	return out
}

func representative(rows []Row, col string) any {
	for _, r := range rows {
		if v := r[col]; v != nil {
			return v
		}
	}
	return nil
}

// Known reports whether any column was classified.
func (c Classification) Known() bool { return len(c) > 0 }

// Columns returns the columns of the given kind, in the order of cols.
func (c Classification) Columns(cols []string, kind ColumnKind) []string {
	out := []string{}
	for _, col := range cols {
		if c[col] == kind {
			out = append(out, col)
		}
	}
	return out
}
