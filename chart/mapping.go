package chart

// Mapping is the persisted field mapping. It carries the fields of both
// families so that switching chart type keeps the other family's choice.
// An empty string means "no column".
type Mapping struct {
	XAxis      string   `json:"xAxis"`
	YAxis      []string `json:"yAxis"`
	NameField  string   `json:"nameField"`
	ValueField string   `json:"valueField"`
}

// CartesianMapping assigns columns to the category axis and to value series.
type CartesianMapping struct {
	CategoryColumn string   `json:"categoryColumn"`
	ValueColumns   []string `json:"valueColumns"`
}

// ProportionalMapping assigns the slice name and slice value columns.
type ProportionalMapping struct {
	NameColumn  string `json:"nameColumn"`
	ValueColumn string `json:"valueColumn"`
}

// MappingPatch is a partial mapping update; nil fields are left unchanged.
type MappingPatch struct {
	XAxis      *string   `json:"xAxis,omitempty"`
	YAxis      *[]string `json:"yAxis,omitempty"`
	NameField  *string   `json:"nameField,omitempty"`
	ValueField *string   `json:"valueField,omitempty"`
}

// Cartesian returns the cartesian view. Value columns are de-duplicated,
// keep their order, and never contain the category column.
func (m Mapping) Cartesian() CartesianMapping {
	values := make([]string, 0, len(m.YAxis))
	for _, col := range m.YAxis {
		if col == "" || col == m.XAxis || containsString(values, col) {
			continue
		}
		values = append(values, col)
	}
	return CartesianMapping{CategoryColumn: m.XAxis, ValueColumns: values}
}

// Proportional returns the proportional view.
func (m Mapping) Proportional() ProportionalMapping {
	return ProportionalMapping{NameColumn: m.NameField, ValueColumn: m.ValueField}
}

// IsEmpty reports whether no field of the family is set.
func (m Mapping) IsEmpty(f Family) bool {
	switch f {
	case FamilyCartesian:
		return m.XAxis == "" && len(m.YAxis) == 0
	case FamilyProportional:
		return m.NameField == "" && m.ValueField == ""
	}
	return true
}

// ValidFor reports whether the family's fields are set and reference only
// columns present in columns.
func (m Mapping) ValidFor(f Family, columns []string) bool {
	if m.IsEmpty(f) {
		return false
	}
	present := func(col string) bool { return col == "" || containsString(columns, col) }

	switch f {
	case FamilyCartesian:
		if !present(m.XAxis) {
			return false
		}
		for _, col := range m.YAxis {
			if !present(col) {
				return false
			}
		}
		return true
	case FamilyProportional:
		return present(m.NameField) && present(m.ValueField)
	}
	return false
}

// Merge applies a patch and returns the result.
func (m Mapping) Merge(p MappingPatch) Mapping {
	out := m.Clone()
	if p.XAxis != nil {
		out.XAxis = *p.XAxis
	}
	if p.YAxis != nil {
		out.YAxis = append([]string{}, (*p.YAxis)...)
	}
	if p.NameField != nil {
		out.NameField = *p.NameField
	}
	if p.ValueField != nil {
		out.ValueField = *p.ValueField
	}
	return out
}

// WithFamily returns m with the family's fields taken from src.
func (m Mapping) WithFamily(f Family, src Mapping) Mapping {
	out := m.Clone()
	switch f {
	case FamilyCartesian:
		out.XAxis = src.XAxis
		out.YAxis = append([]string{}, src.YAxis...)
	case FamilyProportional:
		out.NameField = src.NameField
		out.ValueField = src.ValueField
	}
	return out
}

// Clone returns a deep copy.
func (m Mapping) Clone() Mapping {
	out := m
	if m.YAxis != nil {
		out.YAxis = append([]string{}, m.YAxis...)
	}
	return out
}
