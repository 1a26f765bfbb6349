package chart

import "strings"

// labelSeparator joins the enabled parts of a slice label.
const labelSeparator = ": "

// BuildProportional builds a pie or donut option with one slice per row.
// Values that do not parse as numbers count as zero. With neither a name nor
// a value column the single series has no data.
func BuildProportional(kind ChartType, innerRadiusDefault int, ds Dataset, m ProportionalMapping, style StyleConfig) ChartOption {
	opt := baseOption(kind, style.Base.Resolve())
	opt.Tooltip.Trigger = "item"

	pie := style.Pie.Resolve(innerRadiusDefault)

	data := []any{}
	if m.NameColumn != "" || m.ValueColumn != "" {
		for _, row := range ds.Rows {
			d := PieDatum{}
			if m.NameColumn != "" {
				d.Name = FormatValue(row[m.NameColumn])
			}
			if m.ValueColumn != "" {
				if f, ok := ParseNumber(row[m.ValueColumn]); ok {
					d.Value = f
				}
			}
			data = append(data, d)
			opt.Legend.Data = append(opt.Legend.Data, d.Name)
		}
	}

	name := m.ValueColumn
	if name == "" {
		name = string(kind)
	}
	opt.Series = append(opt.Series, SeriesSpec{
		Name: name,
		Type: SeriesPie,
		Data: data,
		Label: Label{
			Show:      pie.ShowLabel,
			Position:  pie.LabelPosition,
			Formatter: pieLabelFormatter(pie),
		},
		Pie: &PieSeries{
			Radius:    [2]string{percent(pie.InnerRadius), percent(pie.OuterRadius)},
			RoseType:  pie.RoseType,
			PadAngle:  pie.PadAngle,
			LabelLine: pie.ShowLabel && pie.LabelPosition != "center",
		},
	})
	return opt
}

// pieLabelFormatter uses template placeholders understood by common
// renderers: {b} name, {c} value, {d} percentage.
func pieLabelFormatter(p PieOptions) string {
	var parts []string
	if p.ShowName {
		parts = append(parts, "{b}")
	}
	if p.ShowValue {
		parts = append(parts, "{c}")
	}
	if p.ShowPercent {
		parts = append(parts, "{d}%")
	}
	if len(parts) == 0 {
		return "{b}"
	}
	return strings.Join(parts, labelSeparator)
}
