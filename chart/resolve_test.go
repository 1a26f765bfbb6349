package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCartesian(t *testing.T) {
	tests := []struct {
		name string
		ds   Dataset
		want CartesianMapping
	}{
		{
			name: "first text column is the category",
			ds: NewDataset([]string{"sales", "month", "profit", "region"}, []Row{
				{"sales": 10, "month": "Jan", "profit": "2.5", "region": "EU"},
			}),
			want: CartesianMapping{CategoryColumn: "month", ValueColumns: []string{"sales", "profit"}},
		},
		{
			name: "no text column falls back to first column",
			ds: NewDataset([]string{"year", "a", "b"}, []Row{
				{"year": 2020, "a": 1, "b": 2},
			}),
			want: CartesianMapping{CategoryColumn: "year", ValueColumns: []string{"a", "b"}},
		},
		{
			name: "no numeric column uses all other columns",
			ds: NewDataset([]string{"name", "city", "team"}, []Row{
				{"name": "x", "city": "y", "team": "z"},
			}),
			want: CartesianMapping{CategoryColumn: "name", ValueColumns: []string{"city", "team"}},
		},
		{
			name: "empty rows use positional defaults",
			ds:   NewDataset([]string{"a", "b", "c"}, nil),
			want: CartesianMapping{CategoryColumn: "a", ValueColumns: []string{"b", "c"}},
		},
		{
			name: "no columns",
			ds:   NewDataset(nil, nil),
			want: CartesianMapping{ValueColumns: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCartesian(tt.ds))
		})
	}
}

func TestResolveProportional(t *testing.T) {
	tests := []struct {
		name string
		ds   Dataset
		want ProportionalMapping
	}{
		{
			name: "text name and first numeric value",
			ds: NewDataset([]string{"id", "label", "share", "other"}, []Row{
				{"id": 1, "label": "A", "share": 3, "other": 4},
			}),
			want: ProportionalMapping{NameColumn: "label", ValueColumn: "id"},
		},
		{
			name: "all text uses second column",
			ds: NewDataset([]string{"a", "b"}, []Row{
				{"a": "x", "b": "y"},
			}),
			want: ProportionalMapping{NameColumn: "a", ValueColumn: "b"},
		},
		{
			name: "single column has no value",
			ds:   NewDataset([]string{"only"}, []Row{{"only": "x"}}),
			want: ProportionalMapping{NameColumn: "only"},
		},
		{
			name: "no columns",
			ds:   NewDataset(nil, nil),
			want: ProportionalMapping{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveProportional(tt.ds))
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	ds := NewDataset([]string{"month", "sales", "cost"}, []Row{
		{"month": "Jan", "sales": 120, "cost": 80},
		{"month": "Feb", "sales": 150, "cost": 95},
	})

	for _, f := range Families {
		assert.Equal(t, Resolve(ds, f), Resolve(ds, f), f.String())
	}
	assert.Equal(t, ResolveAll(ds), ResolveAll(ds))
}

func TestResolveAll(t *testing.T) {
	ds := NewDataset([]string{"month", "sales"}, []Row{{"month": "Jan", "sales": 1}})
	assert.Equal(t, Mapping{
		XAxis:      "month",
		YAxis:      []string{"sales"},
		NameField:  "month",
		ValueField: "sales",
	}, ResolveAll(ds))
}

func TestMappingValidFor(t *testing.T) {
	cols := []string{"month", "sales"}

	assert.False(t, Mapping{}.ValidFor(FamilyCartesian, cols))
	assert.True(t, Mapping{XAxis: "month", YAxis: []string{"sales"}}.ValidFor(FamilyCartesian, cols))
	assert.False(t, Mapping{XAxis: "month", YAxis: []string{"gone"}}.ValidFor(FamilyCartesian, cols))
	assert.False(t, Mapping{XAxis: "gone"}.ValidFor(FamilyCartesian, cols))

	assert.True(t, Mapping{NameField: "month", ValueField: "sales"}.ValidFor(FamilyProportional, cols))
	assert.False(t, Mapping{NameField: "month", ValueField: "gone"}.ValidFor(FamilyProportional, cols))
	assert.False(t, Mapping{XAxis: "month"}.ValidFor(FamilyProportional, cols))
}

func TestMappingCartesianEnforcesInvariant(t *testing.T) {
	m := Mapping{XAxis: "month", YAxis: []string{"sales", "month", "sales", "", "cost"}}
	assert.Equal(t, CartesianMapping{
		CategoryColumn: "month",
		ValueColumns:   []string{"sales", "cost"},
	}, m.Cartesian())
}

func TestMappingMerge(t *testing.T) {
	m := Mapping{XAxis: "month", YAxis: []string{"sales"}, NameField: "month", ValueField: "sales"}

	got := m.Merge(MappingPatch{XAxis: Ptr("region"), YAxis: &[]string{}})
	assert.Equal(t, "region", got.XAxis)
	assert.Empty(t, got.YAxis)
	assert.Equal(t, "month", got.NameField)
	assert.Equal(t, []string{"sales"}, m.YAxis, "merge must not mutate the receiver")
}
