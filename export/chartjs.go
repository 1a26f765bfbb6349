package export

import (
	"strings"

	"github.com/golammostafa13/chartstudio/chart"
)

// ChartJS converts opt to a Chart.js configuration object. Donuts map to
// the doughnut type; horizontal bars set indexAxis to "y".
func ChartJS(opt chart.ChartOption) map[string]interface{} {
	plugins := map[string]interface{}{
		"title": map[string]interface{}{
			"display": opt.Title.Show,
			"text":    opt.Title.Text,
		},
		"legend": map[string]interface{}{
			"display":  opt.Legend.Show,
			"position": opt.Legend.Position,
		},
		"tooltip": map[string]interface{}{
			"enabled": opt.Tooltip.Show,
		},
	}
	if opt.Title.Subtext != "" {
		plugins["subtitle"] = map[string]interface{}{"display": true, "text": opt.Title.Subtext}
	}
	options := map[string]interface{}{
		"responsive": true,
		"animation":  opt.Animation,
		"plugins":    plugins,
	}

	if opt.Axes == nil {
		return chartJSProportional(opt, options)
	}
	return chartJSCartesian(opt, options)
}

func chartJSCartesian(opt chart.ChartOption, options map[string]interface{}) map[string]interface{} {
	labels := opt.Axes.Category().Data
	stacked := false
	datasets := make([]map[string]interface{}, 0, len(opt.Series))
	for i, s := range opt.Series {
		color := colorAt(opt.Colors, i)
		ds := map[string]interface{}{
			"label":           s.Name,
			"data":            s.Data,
			"borderColor":     color,
			"backgroundColor": color,
		}
		switch {
		case s.Line != nil:
			ds["fill"] = s.Line.Area
			ds["borderWidth"] = s.Line.LineWidth
			ds["pointRadius"] = 0
			if s.Line.ShowSymbol {
				ds["pointRadius"] = s.Line.SymbolSize / 2
			}
			if s.Line.Smooth {
				ds["tension"] = 0.4
			}
			if s.Line.Step != "" {
				ds["stepped"] = chartJSStep(s.Line.Step)
			}
			if s.Line.Area {
				ds["backgroundColor"] = color + "55"
			}
		case s.Bar != nil:
			ds["borderRadius"] = s.Bar.BorderRadius
			ds["barPercentage"] = fraction(s.Bar.BarWidth)
			if s.Bar.Stack != "" {
				ds["stack"] = s.Bar.Stack
				stacked = true
			}
		}
		datasets = append(datasets, ds)
	}

	scale := func(a chart.Axis) map[string]interface{} {
		return map[string]interface{}{
			"stacked": stacked,
			"title":   map[string]interface{}{"display": a.Name != "", "text": a.Name},
		}
	}
	options["scales"] = map[string]interface{}{
		"x": scale(opt.Axes.X),
		"y": scale(opt.Axes.Y),
	}
	if opt.Axes.Y.Type == chart.AxisCategory {
		options["indexAxis"] = "y"
	}

	return map[string]interface{}{
		"type": string(opt.Type),
		"data": map[string]interface{}{
			"labels":   labels,
			"datasets": datasets,
		},
		"options": options,
	}
}

func chartJSProportional(opt chart.ChartOption, options map[string]interface{}) map[string]interface{} {
	labels := []string{}
	datasets := make([]map[string]interface{}, 0, len(opt.Series))
	for _, s := range opt.Series {
		pie := s.PieData()
		values := make([]float64, len(pie))
		colors := make([]string, len(pie))
		for i, d := range pie {
			values[i] = d.Value
			colors[i] = colorAt(opt.Colors, i)
			if len(datasets) == 0 {
				labels = append(labels, d.Name)
			}
		}
		datasets = append(datasets, map[string]interface{}{
			"label":           s.Name,
			"data":            values,
			"backgroundColor": colors,
		})
	}

	kind := "pie"
	if len(opt.Series) > 0 && opt.Series[0].Pie != nil {
		p := opt.Series[0].Pie
		options["radius"] = p.Radius[1]
		if inner := p.Radius[0]; inner != "0%" {
			kind = "doughnut"
			options["cutout"] = inner
		}
	}

	return map[string]interface{}{
		"type": kind,
		"data": map[string]interface{}{
			"labels":   labels,
			"datasets": datasets,
		},
		"options": options,
	}
}

func chartJSStep(step string) interface{} {
	switch step {
	case "start":
		return "before"
	case "end":
		return "after"
	}
	return "middle"
}

// fraction turns "60%" into 0.6.
func fraction(percent string) float64 {
	var n int
	for _, r := range strings.TrimSuffix(percent, "%") {
		if r < '0' || r > '9' {
			return 0.9
		}
		n = n*10 + int(r-'0')
	}
	return float64(n) / 100
}

func colorAt(colors []string, i int) string {
	if len(colors) == 0 {
		colors = chart.DefaultPalette
	}
	return colors[i%len(colors)]
}
