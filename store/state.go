package store

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/datasource"
	"github.com/golammostafa13/chartstudio/logger"
)

// DefaultKey is the key under which the session state document is stored.
const DefaultKey = "chartstudio.state"

// State is the persisted session document.
type State struct {
	ChartType        chart.ChartType   `json:"chartType"`
	Query            string            `json:"query"`
	DataMapping      chart.Mapping     `json:"dataMapping"`
	DataSourceConfig datasource.Config `json:"dataSourceConfig"`
	Config           chart.StyleConfig `json:"config"`
}

// DefaultState is the compiled-in state of a fresh session.
func DefaultState() State {
	return State{
		ChartType:        chart.DefaultChartType,
		DataMapping:      chart.Mapping{YAxis: []string{}},
		DataSourceConfig: datasource.DefaultConfig(),
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.DataMapping = s.DataMapping.Clone()
	out.Config = s.Config.Clone()
	if s.DataSourceConfig.Headers != nil {
		out.DataSourceConfig.Headers = make(map[string]string, len(s.DataSourceConfig.Headers))
		for k, v := range s.DataSourceConfig.Headers {
			out.DataSourceConfig.Headers[k] = v
		}
	}
	return out
}

// decodeState decodes a persisted document field by field. A field that is
// missing or fails to decode keeps its default; the rest still load.
func decodeState(data []byte, log *zap.SugaredLogger) State {
	state := DefaultState()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warnw("Persisted state is corrupt, using defaults", logger.FieldError, err)
		return state
	}

	// field reports whether dst was decoded; dst may be partially written on failure.
	field := func(name string, dst any) bool {
		msg, ok := raw[name]
		if !ok || string(msg) == "null" {
			return false
		}
		if err := json.Unmarshal(msg, dst); err != nil {
			log.Warnw("Persisted state field is corrupt, using default",
				logger.FieldKey, name, logger.FieldError, err)
			return false
		}
		return true
	}

	var chartType string
	if field("chartType", &chartType) {
		if t, err := chart.ParseChartType(chartType); err == nil {
			state.ChartType = t
		} else {
			log.Warnw("Persisted chart type is unknown, using default",
				logger.FieldChartType, chartType)
		}
	}

	var query string
	if field("query", &query) {
		state.Query = query
	}

	var mapping chart.Mapping
	if field("dataMapping", &mapping) {
		if mapping.YAxis == nil {
			mapping.YAxis = []string{}
		}
		state.DataMapping = mapping
	}

	var source datasource.Config
	if field("dataSourceConfig", &source) {
		if source.Type == "" {
			source.Type = datasource.KindStatic
		}
		state.DataSourceConfig = source
	}

	state.Config = decodeStyle(raw["config"], log)
	return state
}

// decodeStyle falls back per bucket.
func decodeStyle(data json.RawMessage, log *zap.SugaredLogger) chart.StyleConfig {
	var cfg chart.StyleConfig
	if len(data) == 0 {
		return cfg
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warnw("Persisted style config is corrupt, using defaults", logger.FieldError, err)
		return cfg
	}

	buckets := map[chart.StyleBucket]any{
		chart.BucketBase: &cfg.Base,
		chart.BucketLine: &cfg.Line,
		chart.BucketBar:  &cfg.Bar,
		chart.BucketPie:  &cfg.Pie,
	}
	for bucket, dst := range buckets {
		msg, ok := raw[string(bucket)]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, dst); err != nil {
			log.Warnw("Persisted style bucket is corrupt, using defaults",
				logger.FieldBucket, bucket, logger.FieldError, err)
			resetBucket(&cfg, bucket)
		}
	}
	return cfg
}

func resetBucket(cfg *chart.StyleConfig, bucket chart.StyleBucket) {
	switch bucket {
	case chart.BucketBase:
		cfg.Base = chart.BaseStyle{}
	case chart.BucketLine:
		cfg.Line = chart.LineStyle{}
	case chart.BucketBar:
		cfg.Bar = chart.BarStyle{}
	case chart.BucketPie:
		cfg.Pie = chart.PieStyle{}
	}
}
