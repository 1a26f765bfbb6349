package chart

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"int64", int64(-3), -3, true},
		{"uint8", uint8(9), 9, true},
		{"json number", json.Number("42"), 42, true},
		{"decimal string", "10", 10, true},
		{"padded string", "  3.25 ", 3.25, true},
		{"exponent", "1e3", 1000, true},
		{"leading dot", ".5", 0.5, true},
		{"signed", "-0.75", -0.75, true},
		{"trailing garbage", "10px", 0, false},
		{"empty", "", 0, false},
		{"spaces only", "   ", 0, false},
		{"hex", "0x1F", 0, false},
		{"infinity word", "Inf", 0, false},
		{"nan word", "NaN", 0, false},
		{"overflow", "1e999", 0, false},
		{"nan float", math.NaN(), 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	ds := NewDataset(
		[]string{"month", "sales", "growth", "active", "note"},
		[]Row{
			{"month": "Jan", "sales": 120, "growth": "0.5", "active": true, "note": nil},
			{"month": "Feb", "sales": 150, "growth": "0.7", "active": false, "note": nil},
		},
	)

	got := Classify(ds)
	assert.Equal(t, Classification{
		"month":  KindText,
		"sales":  KindNumeric,
		"growth": KindNumeric,
		"active": KindText,
		"note":   KindText,
	}, got)
	assert.Equal(t, []string{"sales", "growth"}, got.Columns(ds.Columns, KindNumeric))
}

func TestClassifySkipsLeadingNulls(t *testing.T) {
	ds := NewDataset(
		[]string{"region", "revenue"},
		[]Row{
			{"region": "north", "revenue": nil},
			{"region": "south"},
			{"region": "east", "revenue": "17.5"},
		},
	)

	assert.Equal(t, KindNumeric, Classify(ds)["revenue"])
}

func TestClassifyEmptyDataset(t *testing.T) {
	got := Classify(NewDataset([]string{"a", "b"}, nil))
	assert.Empty(t, got)
	assert.False(t, got.Known())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "A", FormatValue("A"))
	assert.Equal(t, "12.5", FormatValue(12.5))
	assert.Equal(t, "3", FormatValue(int64(3)))
	assert.Equal(t, "true", FormatValue(true))
}
