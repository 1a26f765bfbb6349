package export

import "github.com/golammostafa13/chartstudio/chart"

// ECharts converts opt to an Apache ECharts option object.
func ECharts(opt chart.ChartOption) map[string]interface{} {
	out := map[string]interface{}{
		"title": map[string]interface{}{
			"show":    opt.Title.Show,
			"text":    opt.Title.Text,
			"subtext": opt.Title.Subtext,
		},
		"legend":    echartsLegend(opt.Legend),
		"tooltip":   map[string]interface{}{"show": opt.Tooltip.Show, "trigger": opt.Tooltip.Trigger},
		"color":     opt.Colors,
		"animation": opt.Animation,
	}
	if opt.Axes != nil {
		out["xAxis"] = echartsAxis(opt.Axes.X)
		out["yAxis"] = echartsAxis(opt.Axes.Y)
	}

	series := make([]map[string]interface{}, 0, len(opt.Series))
	for _, s := range opt.Series {
		series = append(series, echartsSeries(s))
	}
	out["series"] = series
	return out
}

func echartsLegend(l chart.Legend) map[string]interface{} {
	legend := map[string]interface{}{
		"show": l.Show,
		"data": l.Data,
	}
	switch l.Position {
	case "bottom":
		legend["bottom"] = 0
	case "left", "right":
		legend[l.Position] = 0
		legend["top"] = "middle"
		legend["orient"] = "vertical"
	default:
		legend["top"] = 0
	}
	return legend
}

func echartsAxis(a chart.Axis) map[string]interface{} {
	axis := map[string]interface{}{"type": string(a.Type)}
	if a.Name != "" {
		axis["name"] = a.Name
	}
	if a.Type == chart.AxisCategory {
		axis["data"] = a.Data
	}
	return axis
}

func echartsSeries(s chart.SeriesSpec) map[string]interface{} {
	label := map[string]interface{}{"show": s.Label.Show}
	if s.Label.Position != "" {
		label["position"] = s.Label.Position
	}
	if s.Label.Formatter != "" {
		label["formatter"] = s.Label.Formatter
	}

	out := map[string]interface{}{
		"name":  s.Name,
		"type":  string(s.Type),
		"data":  s.Data,
		"label": label,
	}
	switch {
	case s.Line != nil:
		out["smooth"] = s.Line.Smooth
		out["showSymbol"] = s.Line.ShowSymbol
		out["symbolSize"] = s.Line.SymbolSize
		out["lineStyle"] = map[string]interface{}{"width": s.Line.LineWidth}
		if s.Line.Step != "" {
			out["step"] = s.Line.Step
		}
		if s.Line.Area {
			out["areaStyle"] = map[string]interface{}{}
		}
	case s.Bar != nil:
		out["barWidth"] = s.Bar.BarWidth
		out["barGap"] = s.Bar.BarGap
		out["itemStyle"] = map[string]interface{}{"borderRadius": s.Bar.BorderRadius}
		if s.Bar.Stack != "" {
			out["stack"] = s.Bar.Stack
		}
	case s.Pie != nil:
		out["radius"] = s.Pie.Radius
		out["padAngle"] = s.Pie.PadAngle
		out["labelLine"] = map[string]interface{}{"show": s.Pie.LabelLine}
		if s.Pie.RoseType != "" {
			out["roseType"] = s.Pie.RoseType
		}
	}
	return out
}
