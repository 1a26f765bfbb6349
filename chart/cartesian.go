package chart

import "fmt"

// stackKey is shared by every series when bar stacking is on.
const stackKey = "total"

// BuildCartesian builds a line or bar option. Categories and series data
// keep row order; a value that does not parse as a number becomes a nil point.
// The option always carries both axes, even with no rows.
func BuildCartesian(kind ChartType, ds Dataset, m CartesianMapping, style StyleConfig) ChartOption {
	opt := baseOption(kind, style.Base.Resolve())
	opt.Tooltip.Trigger = "axis"

	categories := make([]any, len(ds.Rows))
	if m.CategoryColumn != "" {
		for i, row := range ds.Rows {
			categories[i] = row[m.CategoryColumn]
		}
	}
	categoryAxis := Axis{Type: AxisCategory, Name: m.CategoryColumn, Data: categories}
	valueAxis := Axis{Type: AxisValue}
	if len(m.ValueColumns) == 1 {
		valueAxis.Name = m.ValueColumns[0]
	}

	line := style.Line.Resolve()
	bar := style.Bar.Resolve()
	horizontal := kind == Bar && bar.Horizontal

	for _, col := range m.ValueColumns {
		s := SeriesSpec{Name: col, Data: columnValues(ds.Rows, col)}
		switch kind {
		case Line:
			s.Type = SeriesLine
			s.Label = Label{Show: line.ShowLabel, Position: "top"}
			s.Line = &LineSeries{
				Smooth:     line.Smooth,
				Area:       line.ShowArea,
				Step:       line.Step,
				ShowSymbol: line.ShowSymbol,
				SymbolSize: line.SymbolSize,
				LineWidth:  line.LineWidth,
			}
		default:
			s.Type = SeriesBar
			s.Label = Label{Show: bar.ShowLabel, Position: "top"}
			if horizontal {
				s.Label.Position = "right"
			}
			s.Bar = &BarSeries{
				BarWidth:     percent(bar.BarWidth),
				BarGap:       percent(bar.BarGap),
				BorderRadius: bar.BorderRadius,
			}
			if bar.Stack {
				s.Bar.Stack = stackKey
				s.Label.Position = "inside"
			}
		}
		opt.Series = append(opt.Series, s)
		opt.Legend.Data = append(opt.Legend.Data, col)
	}

	if horizontal {
		opt.Axes = &Axes{X: valueAxis, Y: categoryAxis}
	} else {
		opt.Axes = &Axes{X: categoryAxis, Y: valueAxis}
	}
	return opt
}

func columnValues(rows []Row, col string) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		if f, ok := ParseNumber(row[col]); ok {
			out[i] = f
		}
	}
	return out
}

func percent(v int) string {
	return fmt.Sprintf("%d%%", v)
}
