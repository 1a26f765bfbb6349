package chart

import (
	"encoding/json"
	"strings"

	"github.com/golammostafa13/chartstudio/errors"
)

// StyleBucket names one section of the style configuration.
type StyleBucket string

const (
	BucketBase StyleBucket = "base"
	BucketLine StyleBucket = "line"
	BucketBar  StyleBucket = "bar"
	BucketPie  StyleBucket = "pie"
)

// StyleBuckets lists the buckets in the order they are applied.
var StyleBuckets = []StyleBucket{BucketBase, BucketLine, BucketBar, BucketPie}

// DefaultPalette is the series color cycle used when no colors are configured.
var DefaultPalette = []string{
	"#5470c6", "#91cc75", "#fac858", "#ee6666", "#73c0de",
	"#3ba272", "#fc8452", "#9a60b4", "#ea7ccc",
}

// StyleConfig holds the user's style knobs. Every knob is optional: nil means
// "use the default", so 0, false and "" are legal explicit values.
type StyleConfig struct {
	Base BaseStyle `json:"base"`
	Line LineStyle `json:"line"`
	Bar  BarStyle  `json:"bar"`
	Pie  PieStyle  `json:"pie"`
}

// BaseStyle is shared by every chart type.
type BaseStyle struct {
	Title          *string  `json:"title,omitempty"`
	Subtitle       *string  `json:"subtitle,omitempty"`
	ShowLegend     *bool    `json:"showLegend,omitempty"`
	LegendPosition *string  `json:"legendPosition,omitempty"`
	ShowTooltip    *bool    `json:"showTooltip,omitempty"`
	Colors         []string `json:"colors,omitempty"`
	Animation      *bool    `json:"animation,omitempty"`
}

type LineStyle struct {
	Smooth     *bool    `json:"smooth,omitempty"`
	ShowArea   *bool    `json:"showArea,omitempty"`
	Step       *string  `json:"step,omitempty"`
	ShowSymbol *bool    `json:"showSymbol,omitempty"`
	SymbolSize *int     `json:"symbolSize,omitempty"`
	LineWidth  *float64 `json:"lineWidth,omitempty"`
	ShowLabel  *bool    `json:"showLabel,omitempty"`
}

// BarStyle widths and gaps are percentages of the category band.
type BarStyle struct {
	Stack        *bool `json:"stack,omitempty"`
	BarWidth     *int  `json:"barWidth,omitempty"`
	BarGap       *int  `json:"barGap,omitempty"`
	Horizontal   *bool `json:"horizontal,omitempty"`
	BorderRadius *int  `json:"borderRadius,omitempty"`
	ShowLabel    *bool `json:"showLabel,omitempty"`
}

// PieStyle radii are percentages of the container. It also styles donuts.
type PieStyle struct {
	InnerRadius   *int    `json:"innerRadius,omitempty"`
	OuterRadius   *int    `json:"outerRadius,omitempty"`
	ShowLabel     *bool   `json:"showLabel,omitempty"`
	LabelPosition *string `json:"labelPosition,omitempty"`
	ShowName      *bool   `json:"showName,omitempty"`
	ShowValue     *bool   `json:"showValue,omitempty"`
	ShowPercent   *bool   `json:"showPercent,omitempty"`
	RoseType      *string `json:"roseType,omitempty"`
	PadAngle      *int    `json:"padAngle,omitempty"`
}

// BaseOptions is BaseStyle with defaults substituted.
type BaseOptions struct {
	Title          string
	Subtitle       string
	ShowLegend     bool
	LegendPosition string
	ShowTooltip    bool
	Colors         []string
	Animation      bool
}

type LineOptions struct {
	Smooth     bool
	ShowArea   bool
	Step       string
	ShowSymbol bool
	SymbolSize int
	LineWidth  float64
	ShowLabel  bool
}

type BarOptions struct {
	Stack        bool
	BarWidth     int
	BarGap       int
	Horizontal   bool
	BorderRadius int
	ShowLabel    bool
}

type PieOptions struct {
	InnerRadius   int
	OuterRadius   int
	ShowLabel     bool
	LabelPosition string
	ShowName      bool
	ShowValue     bool
	ShowPercent   bool
	RoseType      string
	PadAngle      int
}

var (
	legendPositions = []string{"top", "bottom", "left", "right"}
	stepModes       = []string{"", "start", "middle", "end"}
	labelPositions  = []string{"outside", "inside", "center"}
	roseTypes       = []string{"", "radius", "area"}
)

// Resolve substitutes defaults for unset or unrecognised knobs.
func (s BaseStyle) Resolve() BaseOptions {
	colors := DefaultPalette
	if len(s.Colors) > 0 {
		colors = s.Colors
	}
	return BaseOptions{
		Title:          str(s.Title, ""),
		Subtitle:       str(s.Subtitle, ""),
		ShowLegend:     boolean(s.ShowLegend, true),
		LegendPosition: enum(s.LegendPosition, legendPositions, "top"),
		ShowTooltip:    boolean(s.ShowTooltip, true),
		Colors:         append([]string{}, colors...),
		Animation:      boolean(s.Animation, true),
	}
}

func (s LineStyle) Resolve() LineOptions {
	return LineOptions{
		Smooth:     boolean(s.Smooth, false),
		ShowArea:   boolean(s.ShowArea, false),
		Step:       enum(s.Step, stepModes, ""),
		ShowSymbol: boolean(s.ShowSymbol, true),
		SymbolSize: clamp(integer(s.SymbolSize, 4), 0, 64),
		LineWidth:  float(s.LineWidth, 2),
		ShowLabel:  boolean(s.ShowLabel, false),
	}
}

func (s BarStyle) Resolve() BarOptions {
	return BarOptions{
		Stack:        boolean(s.Stack, false),
		BarWidth:     clamp(integer(s.BarWidth, 60), 0, 100),
		BarGap:       clamp(integer(s.BarGap, 30), 0, 100),
		Horizontal:   boolean(s.Horizontal, false),
		BorderRadius: clamp(integer(s.BorderRadius, 0), 0, 100),
		ShowLabel:    boolean(s.ShowLabel, false),
	}
}

// Resolve uses innerDefault when no inner radius is set; donuts pass a
// positive default, pies pass zero.
func (s PieStyle) Resolve(innerDefault int) PieOptions {
	return PieOptions{
		InnerRadius:   clamp(integer(s.InnerRadius, innerDefault), 0, 100),
		OuterRadius:   clamp(integer(s.OuterRadius, 70), 0, 100),
		ShowLabel:     boolean(s.ShowLabel, true),
		LabelPosition: enum(s.LabelPosition, labelPositions, "outside"),
		ShowName:      boolean(s.ShowName, true),
		ShowValue:     boolean(s.ShowValue, false),
		ShowPercent:   boolean(s.ShowPercent, true),
		RoseType:      enum(s.RoseType, roseTypes, ""),
		PadAngle:      clamp(integer(s.PadAngle, 0), 0, 360),
	}
}

// Merge overlays the set fields of p onto s.
func (s BaseStyle) Merge(p BaseStyle) BaseStyle {
	mergePtr(&s.Title, p.Title)
	mergePtr(&s.Subtitle, p.Subtitle)
	mergePtr(&s.ShowLegend, p.ShowLegend)
	mergePtr(&s.LegendPosition, p.LegendPosition)
	mergePtr(&s.ShowTooltip, p.ShowTooltip)
	mergePtr(&s.Animation, p.Animation)
	if p.Colors != nil {
		s.Colors = append([]string{}, p.Colors...)
	}
	return s
}

func (s LineStyle) Merge(p LineStyle) LineStyle {
	mergePtr(&s.Smooth, p.Smooth)
	mergePtr(&s.ShowArea, p.ShowArea)
	mergePtr(&s.Step, p.Step)
	mergePtr(&s.ShowSymbol, p.ShowSymbol)
	mergePtr(&s.SymbolSize, p.SymbolSize)
	mergePtr(&s.LineWidth, p.LineWidth)
	mergePtr(&s.ShowLabel, p.ShowLabel)
	return s
}

func (s BarStyle) Merge(p BarStyle) BarStyle {
	mergePtr(&s.Stack, p.Stack)
	mergePtr(&s.BarWidth, p.BarWidth)
	mergePtr(&s.BarGap, p.BarGap)
	mergePtr(&s.Horizontal, p.Horizontal)
	mergePtr(&s.BorderRadius, p.BorderRadius)
	mergePtr(&s.ShowLabel, p.ShowLabel)
	return s
}

func (s PieStyle) Merge(p PieStyle) PieStyle {
	mergePtr(&s.InnerRadius, p.InnerRadius)
	mergePtr(&s.OuterRadius, p.OuterRadius)
	mergePtr(&s.ShowLabel, p.ShowLabel)
	mergePtr(&s.LabelPosition, p.LabelPosition)
	mergePtr(&s.ShowName, p.ShowName)
	mergePtr(&s.ShowValue, p.ShowValue)
	mergePtr(&s.ShowPercent, p.ShowPercent)
	mergePtr(&s.RoseType, p.RoseType)
	mergePtr(&s.PadAngle, p.PadAngle)
	return s
}

// MergeBucket overlays the named bucket of patch onto c. Other buckets of
// patch are ignored.
func (c StyleConfig) MergeBucket(bucket StyleBucket, patch StyleConfig) (StyleConfig, error) {
	switch bucket {
	case BucketBase:
		c.Base = c.Base.Merge(patch.Base)
	case BucketLine:
		c.Line = c.Line.Merge(patch.Line)
	case BucketBar:
		c.Bar = c.Bar.Merge(patch.Bar)
	case BucketPie:
		c.Pie = c.Pie.Merge(patch.Pie)
	default:
		return c, errors.WithHint(errors.Wrapf(errors.ErrUnknownStyleBucket, "%q", string(bucket)),
			"use base, line, bar or pie")
	}
	return c, nil
}

// ParseStyleBucket validates a bucket name.
func ParseStyleBucket(s string) (StyleBucket, error) {
	b := StyleBucket(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case BucketBase, BucketLine, BucketBar, BucketPie:
		return b, nil
	}
	return "", errors.Wrapf(errors.ErrUnknownStyleBucket, "%q", s)
}

// BucketFor returns the style bucket a chart type reads. Donuts share the pie bucket.
func BucketFor(t ChartType) StyleBucket {
	switch t {
	case Line:
		return BucketLine
	case Bar:
		return BucketBar
	case Pie, Donut:
		return BucketPie
	}
	return BucketBase
}

// DecodeStylePatch decodes a JSON object into the named bucket of a patch.
func DecodeStylePatch(bucket StyleBucket, data []byte) (StyleConfig, error) {
	var patch StyleConfig
	var target any
	switch bucket {
	case BucketBase:
		target = &patch.Base
	case BucketLine:
		target = &patch.Line
	case BucketBar:
		target = &patch.Bar
	case BucketPie:
		target = &patch.Pie
	default:
		return patch, errors.Wrapf(errors.ErrUnknownStyleBucket, "%q", string(bucket))
	}
	if err := json.Unmarshal(data, target); err != nil {
		return patch, errors.Wrapf(errors.ErrInvalidRequest, "decode %s style: %v", bucket, err)
	}
	return patch, nil
}

// Clone returns a deep copy so callers can't reach the store's pointers.
func (c StyleConfig) Clone() StyleConfig {
	data, err := json.Marshal(c)
	if err != nil {
		return c
	}
	var out StyleConfig
	if err := json.Unmarshal(data, &out); err != nil {
		return c
	}
	return out
}

func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func str(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func boolean(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func integer(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func float(p *float64, def float64) float64 {
	if p == nil || !finite(*p) || *p < 0 {
		return def
	}
	return *p
}

func enum(p *string, allowed []string, def string) string {
	if p == nil {
		return def
	}
	v := strings.ToLower(strings.TrimSpace(*p))
	if containsString(allowed, v) {
		return v
	}
	return def
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Ptr returns a pointer to v; handy for building style patches.
func Ptr[T any](v T) *T { return &v }
