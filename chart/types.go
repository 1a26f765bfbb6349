package chart

import (
	"strings"

	"github.com/golammostafa13/chartstudio/errors"
)

// ChartType names a chart the user can pick.
type ChartType string

const (
	Line  ChartType = "line"
	Bar   ChartType = "bar"
	Pie   ChartType = "pie"
	Donut ChartType = "donut"
)

// DefaultChartType is the chart type of a fresh session.
const DefaultChartType = Bar

// Family groups chart types that share an option shape.
type Family int

const (
	// FamilyCartesian charts plot series against a category axis and a value axis.
	FamilyCartesian Family = iota + 1
	// FamilyProportional charts show each row's share of the whole.
	FamilyProportional
)

func (f Family) String() string {
	switch f {
	case FamilyCartesian:
		return "cartesian"
	case FamilyProportional:
		return "proportional"
	}
	return "unknown"
}

// Families lists every chart family.
var Families = []Family{FamilyCartesian, FamilyProportional}

// ParseChartType validates s against the default registry.
func ParseChartType(s string) (ChartType, error) {
	t := ChartType(strings.ToLower(strings.TrimSpace(s)))
	if _, err := defaultRegistry.Lookup(t); err != nil {
		return "", err
	}
	return t, nil
}

// FamilyOf returns the family of a chart type from the default registry.
func FamilyOf(t ChartType) (Family, error) {
	v, err := defaultRegistry.Lookup(t)
	if err != nil {
		return 0, err
	}
	return v.Family(), nil
}

// unknownChartType builds the error returned for unregistered chart types.
func unknownChartType(t ChartType, known []ChartType) error {
	names := make([]string, len(known))
	for i, k := range known {
		names[i] = string(k)
	}
	return errors.WithHintf(
		errors.Wrapf(errors.ErrUnknownChartType, "%q", string(t)),
		"supported chart types: %s", strings.Join(names, ", "))
}
