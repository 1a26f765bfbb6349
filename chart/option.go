package chart

// ChartOption is the renderer-agnostic chart definition handed to a
// rendering backend. Builders return a fresh value on every call.
type ChartOption struct {
	Type      ChartType    `json:"type"`
	Title     Title        `json:"title"`
	Legend    Legend       `json:"legend"`
	Tooltip   Tooltip      `json:"tooltip"`
	Colors    []string     `json:"colors"`
	Animation bool         `json:"animation"`
	Axes      *Axes        `json:"axes,omitempty"`
	Series    []SeriesSpec `json:"series"`
}

type Title struct {
	Text    string `json:"text"`
	Subtext string `json:"subtext,omitempty"`
	Show    bool   `json:"show"`
}

type Legend struct {
	Show     bool     `json:"show"`
	Position string   `json:"position"`
	Data     []string `json:"data"`
}

type Tooltip struct {
	Show    bool   `json:"show"`
	Trigger string `json:"trigger"`
}

// AxisType says whether an axis lays out discrete categories or a numeric scale.
type AxisType string

const (
	AxisCategory AxisType = "category"
	AxisValue    AxisType = "value"
)

// Axes holds the horizontal (X) and vertical (Y) axes. Horizontal bar
// charts put the value axis on X and the category axis on Y.
type Axes struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

// Axis data is only set for category axes.
type Axis struct {
	Type AxisType `json:"type"`
	Name string   `json:"name,omitempty"`
	Data []any    `json:"data"`
}

// Category returns whichever axis carries the categories.
func (a Axes) Category() Axis {
	if a.Y.Type == AxisCategory {
		return a.Y
	}
	return a.X
}

// Value returns whichever axis carries the value scale.
func (a Axes) Value() Axis {
	if a.Y.Type == AxisCategory {
		return a.X
	}
	return a.Y
}

// SeriesType is the drawing primitive of a series.
type SeriesType string

const (
	SeriesLine SeriesType = "line"
	SeriesBar  SeriesType = "bar"
	SeriesPie  SeriesType = "pie"
)

// SeriesSpec is one plotted trace. Cartesian data points are float64 or nil;
// pie data points are PieDatum. Exactly one of Line, Bar, Pie is set.
type SeriesSpec struct {
	Name  string      `json:"name"`
	Type  SeriesType  `json:"type"`
	Data  []any       `json:"data"`
	Label Label       `json:"label"`
	Line  *LineSeries `json:"line,omitempty"`
	Bar   *BarSeries  `json:"bar,omitempty"`
	Pie   *PieSeries  `json:"pie,omitempty"`
}

type Label struct {
	Show      bool   `json:"show"`
	Position  string `json:"position,omitempty"`
	Formatter string `json:"formatter,omitempty"`
}

type LineSeries struct {
	Smooth     bool    `json:"smooth"`
	Area       bool    `json:"area"`
	Step       string  `json:"step,omitempty"`
	ShowSymbol bool    `json:"showSymbol"`
	SymbolSize int     `json:"symbolSize"`
	LineWidth  float64 `json:"lineWidth"`
}

// BarSeries widths are CSS-style percentages, e.g. "60%".
type BarSeries struct {
	Stack        string `json:"stack,omitempty"`
	BarWidth     string `json:"barWidth"`
	BarGap       string `json:"barGap"`
	BorderRadius int    `json:"borderRadius"`
}

type PieSeries struct {
	Radius    [2]string `json:"radius"`
	RoseType  string    `json:"roseType,omitempty"`
	PadAngle  int       `json:"padAngle"`
	LabelLine bool      `json:"labelLine"`
}

// PieDatum is one slice.
type PieDatum struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Values returns the numeric points of a cartesian series, with ok false for nil points.
func (s SeriesSpec) Values() (values []float64, ok []bool) {
	values = make([]float64, len(s.Data))
	ok = make([]bool, len(s.Data))
	for i, d := range s.Data {
		switch v := d.(type) {
		case float64:
			values[i], ok[i] = v, true
		case PieDatum:
			values[i], ok[i] = v.Value, true
		}
	}
	return values, ok
}

// PieData returns the slices of a pie series.
func (s SeriesSpec) PieData() []PieDatum {
	out := make([]PieDatum, 0, len(s.Data))
	for _, d := range s.Data {
		if p, ok := d.(PieDatum); ok {
			out = append(out, p)
		}
	}
	return out
}

// baseOption applies the shared base style.
func baseOption(t ChartType, base BaseOptions) ChartOption {
	return ChartOption{
		Type: t,
		Title: Title{
			Text:    base.Title,
			Subtext: base.Subtitle,
			Show:    base.Title != "" || base.Subtitle != "",
		},
		Legend: Legend{
			Show:     base.ShowLegend,
			Position: base.LegendPosition,
			Data:     []string{},
		},
		Tooltip:   Tooltip{Show: base.ShowTooltip},
		Colors:    base.Colors,
		Animation: base.Animation,
		Series:    []SeriesSpec{},
	}
}
