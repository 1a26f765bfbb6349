package chart

// Resolve derives a default mapping for one family from the dataset. Only
// that family's fields are set. It never fails: with no columns the fields
// stay empty and builders render no series.
func Resolve(ds Dataset, f Family) Mapping {
	switch f {
	case FamilyCartesian:
		c := ResolveCartesian(ds)
		return Mapping{XAxis: c.CategoryColumn, YAxis: c.ValueColumns}
	case FamilyProportional:
		p := ResolveProportional(ds)
		return Mapping{NameField: p.NameColumn, ValueField: p.ValueColumn}
	}
	return Mapping{}
}

// ResolveAll derives default fields for every family.
func ResolveAll(ds Dataset) Mapping {
	return Resolve(ds, FamilyCartesian).WithFamily(FamilyProportional, Resolve(ds, FamilyProportional))
}

// ResolveCartesian picks the first text column as the category (else the
// first column) and every numeric column as a value series. With no numeric
// columns every other column becomes a series so the chart still renders.
func ResolveCartesian(ds Dataset) CartesianMapping {
	if len(ds.Columns) == 0 {
		return CartesianMapping{ValueColumns: []string{}}
	}

	kinds := Classify(ds)
	category := pickCategory(ds.Columns, kinds)

	values := []string{}
	for _, col := range kinds.Columns(ds.Columns, KindNumeric) {
		if col != category {
			values = append(values, col)
		}
	}
	if len(values) == 0 {
		for _, col := range ds.Columns {
			if col != category {
				values = append(values, col)
			}
		}
	}
	return CartesianMapping{CategoryColumn: category, ValueColumns: values}
}

// ResolveProportional picks the name column like the cartesian category and
// the leftmost numeric column as the value, falling back to the second column.
func ResolveProportional(ds Dataset) ProportionalMapping {
	if len(ds.Columns) == 0 {
		return ProportionalMapping{}
	}

	kinds := Classify(ds)
	name := pickCategory(ds.Columns, kinds)

	for _, col := range kinds.Columns(ds.Columns, KindNumeric) {
		if col != name {
			return ProportionalMapping{NameColumn: name, ValueColumn: col}
		}
	}
	if len(ds.Columns) >= 2 && ds.Columns[1] != name {
		return ProportionalMapping{NameColumn: name, ValueColumn: ds.Columns[1]}
	}
	return ProportionalMapping{NameColumn: name}
}

func pickCategory(cols []string, kinds Classification) string {
	if text := kinds.Columns(cols, KindText); len(text) > 0 {
		return text[0]
	}
	return cols[0]
}
