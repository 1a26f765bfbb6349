// Package export serialises chart options for use outside chartstudio:
// ready-to-paste ECharts and Chart.js snippets, and JSON or YAML documents.
package export

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/errors"
)

type Format string

const (
	FormatECharts Format = "echarts"
	FormatChartJS Format = "chartjs"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatECharts, FormatChartJS, FormatJSON, FormatYAML}

// ParseFormat validates a format name. "yml" and "chart.js" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatECharts, FormatChartJS, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "chart.js":
		return FormatChartJS, nil
	}
	return "", errors.WithHint(
		errors.Wrapf(errors.ErrInvalidRequest, "unsupported export format %q", s),
		"supported export formats: echarts, chartjs, json, yaml")
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	}
	return "text/javascript"
}

// Export renders opt in the given format.
func Export(opt chart.ChartOption, format Format) ([]byte, error) {
	switch format {
	case FormatECharts:
		return snippet(echartsTemplate, ECharts(opt))
	case FormatChartJS:
		return snippet(chartJSTemplate, ChartJS(opt))
	case FormatJSON:
		data, err := json.MarshalIndent(opt, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "encode option as json")
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return toYAML(opt)
	}
	_, err := ParseFormat(string(format))
	return nil, err
}

const (
	echartsTemplate = `const chart = echarts.init(document.getElementById('chart'));
const option = %s;
chart.setOption(option, true);
`
	chartJSTemplate = `const config = %s;
new Chart(document.getElementById('chart'), config);
`
)

func snippet(template string, v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode chart config")
	}
	return []byte(strings.Replace(template, "%s", string(data), 1)), nil
}

// toYAML goes through JSON so the YAML keys match the JSON field names and
// keep their declaration order.
func toYAML(opt chart.ChartOption) ([]byte, error) {
	data, err := json.Marshal(opt)
	if err != nil {
		return nil, errors.Wrap(err, "encode option as json")
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, errors.Wrap(err, "parse option json")
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, errors.Wrap(err, "encode option as yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encode option as yaml")
	}
	return buf.Bytes(), nil
}

// blockStyle drops the flow and quoting styles the JSON parse left behind.
// Empty collections stay in flow style so they print as [] and {}.
func blockStyle(n *yaml.Node) {
	if (n.Kind == yaml.SequenceNode || n.Kind == yaml.MappingNode) && len(n.Content) == 0 {
		n.Style = yaml.FlowStyle
		return
	}
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
