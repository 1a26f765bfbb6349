package logger

// Standard field names for consistent structured logging.
// Use these constants instead of raw strings.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"

	// Chart pipeline
	FieldChartType = "chart_type"
	FieldFamily    = "family"
	FieldBucket    = "bucket"
	FieldColumns   = "columns"
	FieldRows      = "rows"
	FieldSeries    = "series"
	FieldEvent     = "event"

	// Data sources
	FieldSource = "source"
	FieldQuery  = "query"
	FieldURL    = "url"
	FieldPath   = "path"

	// Network
	FieldAddress  = "address"
	FieldClientID = "client_id"
	FieldMethod   = "method"
	FieldStatus   = "status"

	FieldDurationMS = "duration_ms"
	FieldCount      = "count"
	FieldKey        = "key"
)
