package store

import "github.com/golammostafa13/chartstudio/chart"

// EventKind identifies what a store mutation changed.
type EventKind string

const (
	EventDataChanged       EventKind = "data-changed"
	EventMappingChanged    EventKind = "mapping-changed"
	EventChartTypeChanged  EventKind = "chart-type-changed"
	EventConfigUpdated     EventKind = "config-updated"
	EventDataSourceChanged EventKind = "data-source-changed"
)

// Event is delivered synchronously to subscribers during the mutating call.
type Event struct {
	Kind EventKind

	// Dataset is set for EventDataChanged, possibly with no rows.
	Dataset chart.Dataset
	// Mapping is the mapping after the change, for data and mapping events.
	Mapping chart.Mapping
	// ChartType and Previous are set for EventChartTypeChanged.
	ChartType chart.ChartType
	Previous  chart.ChartType
	// Bucket is set for EventConfigUpdated.
	Bucket chart.StyleBucket
}

// Listener handles store events. Listeners run inline and must not cause
// unbounded re-entrant mutation.
type Listener func(Event)
