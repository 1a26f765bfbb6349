package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/datasource"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/kv"
)

func salesData() chart.Dataset {
	return chart.NewDataset([]string{"month", "sales"}, []chart.Row{
		{"month": "Jan", "sales": 120},
		{"month": "Feb", "sales": 150},
	})
}

func record(s *Store) *[]Event {
	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })
	return &events
}

func TestNewUsesDefaults(t *testing.T) {
	s := New(context.Background(), nil)
	assert.Equal(t, chart.DefaultChartType, s.ChartType())
	assert.Equal(t, datasource.KindStatic, s.DataSourceConfig().Type)
	assert.Empty(t, s.Dataset().Rows)
}

func TestSetDataResolvesEmptyMapping(t *testing.T) {
	s := New(context.Background(), kv.NewMemory())
	events := record(s)

	s.SetData(salesData())

	assert.Equal(t, chart.Mapping{
		XAxis: "month", YAxis: []string{"sales"},
		NameField: "month", ValueField: "sales",
	}, s.Mapping())
	require.Len(t, *events, 1)
	assert.Equal(t, EventDataChanged, (*events)[0].Kind)
	assert.Equal(t, 2, (*events)[0].Dataset.Len())
}

func TestSetDataKeepsValidMapping(t *testing.T) {
	s := New(context.Background(), kv.NewMemory())
	s.SetData(chart.NewDataset([]string{"month", "sales", "cost"}, []chart.Row{
		{"month": "Jan", "sales": 1, "cost": 2},
	}))
	s.SetMapping(chart.MappingPatch{YAxis: &[]string{"cost"}})

	s.SetData(chart.NewDataset([]string{"month", "sales", "cost"}, []chart.Row{
		{"month": "Mar", "sales": 3, "cost": 4},
	}))
	assert.Equal(t, []string{"cost"}, s.Mapping().YAxis)
}

func TestSetDataReplacesStaleFamilyOnly(t *testing.T) {
	s := New(context.Background(), kv.NewMemory())
	s.SetMapping(chart.MappingPatch{
		XAxis:      chart.Ptr("region"),
		YAxis:      &[]string{"revenue"},
		NameField:  chart.Ptr("month"),
		ValueField: chart.Ptr("sales"),
	})

	s.SetData(salesData())

	m := s.Mapping()
	assert.Equal(t, "month", m.XAxis, "stale cartesian fields are re-resolved")
	assert.Equal(t, []string{"sales"}, m.YAxis)
	assert.Equal(t, "month", m.NameField)
	assert.Equal(t, "sales", m.ValueField)
}

func TestSetDataEmptyStillNotifies(t *testing.T) {
	s := New(context.Background(), nil)
	events := record(s)

	s.SetData(chart.Dataset{})

	require.Len(t, *events, 1)
	assert.Equal(t, EventDataChanged, (*events)[0].Kind)
	assert.NotNil(t, (*events)[0].Dataset.Rows)
	assert.Equal(t, "", s.Mapping().XAxis)
}

func TestSetMappingDoesNotValidate(t *testing.T) {
	s := New(context.Background(), nil)
	s.SetData(salesData())
	events := record(s)

	s.SetMapping(chart.MappingPatch{XAxis: chart.Ptr("does-not-exist")})

	assert.Equal(t, "does-not-exist", s.Mapping().XAxis)
	assert.Equal(t, []string{"sales"}, s.Mapping().YAxis)
	require.Len(t, *events, 1)
	assert.Equal(t, EventMappingChanged, (*events)[0].Kind)
}

func TestSetChartType(t *testing.T) {
	s := New(context.Background(), nil)
	events := record(s)

	require.NoError(t, s.SetChartType(chart.Bar))
	assert.Empty(t, *events, "unchanged type emits nothing")

	require.NoError(t, s.SetChartType(chart.Pie))
	require.Len(t, *events, 1)
	assert.Equal(t, Event{Kind: EventChartTypeChanged, ChartType: chart.Pie, Previous: chart.Bar}, (*events)[0])

	err := s.SetChartType("radar")
	assert.True(t, errors.Is(err, errors.ErrUnknownChartType))
	assert.Equal(t, chart.Pie, s.ChartType())
}

func TestSetChartTypeDoesNotResolve(t *testing.T) {
	s := New(context.Background(), nil)
	s.SetMapping(chart.MappingPatch{NameField: chart.Ptr("x")})
	require.NoError(t, s.SetChartType(chart.Pie))
	assert.Equal(t, "x", s.Mapping().NameField)
}

func TestResolveMapping(t *testing.T) {
	s := New(context.Background(), nil)
	s.SetData(salesData())
	s.SetMapping(chart.MappingPatch{NameField: chart.Ptr("sales"), ValueField: chart.Ptr("")})
	require.NoError(t, s.SetChartType(chart.Donut))

	require.NoError(t, s.ResolveMapping())
	assert.Equal(t, "month", s.Mapping().NameField)
	assert.Equal(t, "sales", s.Mapping().ValueField)
}

func TestSetStyle(t *testing.T) {
	s := New(context.Background(), nil)
	events := record(s)

	require.NoError(t, s.SetStyle(chart.BucketBar, chart.StyleConfig{Bar: chart.BarStyle{Stack: chart.Ptr(true)}}))
	require.NoError(t, s.SetStyle(chart.BucketBar, chart.StyleConfig{Bar: chart.BarStyle{BarWidth: chart.Ptr(0)}}))

	style := s.Style()
	assert.True(t, *style.Bar.Stack)
	assert.Equal(t, 0, *style.Bar.BarWidth)
	require.Len(t, *events, 2)
	assert.Equal(t, Event{Kind: EventConfigUpdated, Bucket: chart.BucketBar}, (*events)[1])

	err := s.SetStyle("radar", chart.StyleConfig{})
	assert.True(t, errors.Is(err, errors.ErrUnknownStyleBucket))
	assert.Len(t, *events, 2)
}

func TestStyleGetterReturnsCopy(t *testing.T) {
	s := New(context.Background(), nil)
	require.NoError(t, s.SetStyle(chart.BucketBase, chart.StyleConfig{Base: chart.BaseStyle{Title: chart.Ptr("a")}}))

	style := s.Style()
	*style.Base.Title = "changed"
	assert.Equal(t, "a", *s.Style().Base.Title)
}

func TestUnsubscribe(t *testing.T) {
	s := New(context.Background(), nil)
	calls := 0
	unsubscribe := s.Subscribe(func(Event) { calls++ })

	s.SetQuery("SELECT 1")
	unsubscribe()
	s.SetQuery("SELECT 2")

	assert.Equal(t, 1, calls)
}

func TestSubscribersRunInOrder(t *testing.T) {
	s := New(context.Background(), nil)
	var order []int
	s.Subscribe(func(Event) { order = append(order, 1) })
	s.Subscribe(func(Event) { order = append(order, 2) })

	s.SetData(salesData())
	assert.Equal(t, []int{1, 2}, order)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	s := New(ctx, store)
	s.SetMapping(chart.MappingPatch{XAxis: chart.Ptr("month")})
	require.NoError(t, s.SetChartType(chart.Line))
	require.NoError(t, s.SetStyle(chart.BucketLine, chart.StyleConfig{Line: chart.LineStyle{Smooth: chart.Ptr(true)}}))
	s.SetDataSourceConfig(datasource.Config{Type: datasource.KindSQL, Query: "SELECT month, sales FROM t"})

	restarted := New(ctx, store)
	assert.Equal(t, "month", restarted.Mapping().XAxis)
	assert.Equal(t, chart.Line, restarted.ChartType())
	assert.True(t, *restarted.Style().Line.Smooth)
	assert.Equal(t, "SELECT month, sales FROM t", restarted.Query())
	assert.Equal(t, datasource.KindSQL, restarted.DataSourceConfig().Type)
}

func TestPersistenceWithSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := kv.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	s := New(ctx, db)
	s.SetMapping(chart.MappingPatch{XAxis: chart.Ptr("month")})

	assert.Equal(t, "month", New(ctx, db).Mapping().XAxis)
}

func TestCorruptStateFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, DefaultKey, []byte(`{not json`)))

	s := New(ctx, store)
	assert.Equal(t, DefaultState(), s.Snapshot())
}

func TestCorruptFieldFallsBackPerField(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, DefaultKey, []byte(`{
		"chartType": "pie",
		"query": 42,
		"dataMapping": {"xAxis": "month", "yAxis": "not-a-list"},
		"dataSourceConfig": {"type": "api", "url": "http://example.test"},
		"config": {"base": {"title": "Sales"}, "bar": {"barWidth": "wide"}}
	}`)))

	s := New(ctx, store)
	state := s.Snapshot()
	assert.Equal(t, chart.Pie, state.ChartType)
	assert.Equal(t, "", state.Query)
	assert.Equal(t, DefaultState().DataMapping, state.DataMapping)
	assert.Equal(t, datasource.KindAPI, state.DataSourceConfig.Type)
	assert.Equal(t, "Sales", *state.Config.Base.Title)
	assert.Nil(t, state.Config.Bar.BarWidth)
}

func TestUnknownPersistedChartType(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, DefaultKey, []byte(`{"chartType": "radar", "query": "SELECT 1"}`)))

	s := New(ctx, store)
	assert.Equal(t, chart.DefaultChartType, s.ChartType())
	assert.Equal(t, "SELECT 1", s.Query())
}
