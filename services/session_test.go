package services

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/controller"
	"github.com/golammostafa13/chartstudio/datasource"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/store"
)

type recorder struct {
	mu       sync.Mutex
	rendered []chart.ChartOption
}

func (r *recorder) Render(opt chart.ChartOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = append(r.rendered, opt)
	return nil
}

func (r *recorder) Resize(int, int) error { return nil }
func (r *recorder) Dispose() error        { return nil }

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rendered)
}

func (r *recorder) last() chart.ChartOption {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rendered[len(r.rendered)-1]
}

type fakeSQL struct {
	ds    chart.Dataset
	query string
}

func (f *fakeSQL) Query(_ context.Context, q string) (chart.Dataset, error) {
	f.query = q
	return f.ds, nil
}

func newSession(t *testing.T, opts Options) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts.Backend = func(chart.ChartType) (controller.Backend, error) { return rec, nil }
	s := NewSession(store.New(context.Background(), nil), opts)
	t.Cleanup(func() { s.Close() })
	return s, rec
}

func sales() chart.Dataset {
	return chart.NewDataset([]string{"month", "sales"}, []chart.Row{
		{"month": "Jan", "sales": 120},
		{"month": "Feb", "sales": 150},
	})
}

func TestLoadStaticJSON(t *testing.T) {
	s, rec := newSession(t, Options{})

	ds, err := s.Load(context.Background(), datasource.Config{
		Type: datasource.KindStatic,
		JSON: `[{"month":"Jan","sales":120},{"month":"Feb","sales":150}]`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"month", "sales"}, ds.Columns)

	state := s.State()
	assert.Equal(t, datasource.KindStatic, state.DataSourceConfig.Type)
	assert.Equal(t, "month", state.DataMapping.XAxis)
	assert.Equal(t, []string{"sales"}, state.DataMapping.YAxis)
	assert.Equal(t, "sales", rec.last().Series[0].Name)
}

func TestRunQuery(t *testing.T) {
	sql := &fakeSQL{ds: sales()}
	s, rec := newSession(t, Options{Deps: datasource.Deps{SQL: sql}})

	_, err := s.RunQuery(context.Background(), "SELECT month, sales FROM revenue")
	require.NoError(t, err)
	assert.Equal(t, "SELECT month, sales FROM revenue", sql.query)
	assert.Equal(t, "SELECT month, sales FROM revenue", s.State().Query)
	assert.Len(t, rec.last().Series, 1)
}

func TestRunQueryWithoutDatabase(t *testing.T) {
	s, _ := newSession(t, Options{})
	_, err := s.RunQuery(context.Background(), "SELECT 1")
	assert.True(t, errors.Is(err, errors.ErrUnsupportedSource))
}

func TestLoadAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"items":[{"region":"EU","total":3},{"region":"US","total":5}]}}`))
	}))
	defer srv.Close()

	s, _ := newSession(t, Options{})
	ds, err := s.Load(context.Background(), datasource.Config{Type: datasource.KindAPI, URL: srv.URL, DataPath: "data.items"})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "region", s.State().DataMapping.NameField)
}

func TestSetChartTypeResolvesUnusableMapping(t *testing.T) {
	s, rec := newSession(t, Options{})
	s.LoadData(sales())
	s.SetMapping(chart.MappingPatch{NameField: chart.Ptr("gone"), ValueField: chart.Ptr("gone")})

	require.NoError(t, s.SetChartType(chart.Pie))
	m := s.State().DataMapping
	assert.Equal(t, "month", m.NameField)
	assert.Equal(t, "sales", m.ValueField)
	assert.Equal(t, []chart.PieDatum{{Name: "Jan", Value: 120}, {Name: "Feb", Value: 150}}, rec.last().Series[0].PieData())

	assert.True(t, errors.Is(s.SetChartType("radar"), errors.ErrUnknownChartType))
}

func TestSetChartTypeKeepsUsableMapping(t *testing.T) {
	s, _ := newSession(t, Options{})
	s.LoadData(sales())
	s.SetMapping(chart.MappingPatch{NameField: chart.Ptr("sales"), ValueField: chart.Ptr("sales")})

	require.NoError(t, s.SetChartType(chart.Donut))
	assert.Equal(t, "sales", s.State().DataMapping.NameField)
}

func TestEditStyleImmediate(t *testing.T) {
	s, rec := newSession(t, Options{})
	s.LoadData(sales())

	require.NoError(t, s.EditStyleJSON("base", []byte(`{"title":"Revenue"}`), false))
	assert.Equal(t, "Revenue", rec.last().Title.Text)

	assert.True(t, errors.Is(s.EditStyleJSON("axis", []byte(`{}`), false), errors.ErrUnknownStyleBucket))
	assert.Error(t, s.EditStyleJSON("bar", []byte(`{"barWidth":"wide"}`), false))
}

func TestEditStyleDebounced(t *testing.T) {
	s, rec := newSession(t, Options{Debounce: 50 * time.Millisecond})
	s.LoadData(sales())
	before := rec.count()

	for _, w := range []int{20, 30, 40} {
		require.NoError(t, s.EditStyle(chart.BucketBar, chart.StyleConfig{Bar: chart.BarStyle{BarWidth: chart.Ptr(w)}}, true))
	}
	require.NoError(t, s.EditStyle(chart.BucketBase, chart.StyleConfig{Base: chart.BaseStyle{Title: chart.Ptr("T")}}, true))
	assert.Equal(t, before, rec.count())

	require.Eventually(t, func() bool { return rec.count() == before+2 }, 2*time.Second, 10*time.Millisecond)
	opt := rec.last()
	assert.Equal(t, "40%", opt.Series[0].Bar.BarWidth)
	assert.Equal(t, "T", opt.Title.Text)
}

func TestFlushStyle(t *testing.T) {
	s, _ := newSession(t, Options{Debounce: time.Hour})
	require.NoError(t, s.EditStyle(chart.BucketLine, chart.StyleConfig{Line: chart.LineStyle{Smooth: chart.Ptr(true)}}, true))
	assert.Nil(t, s.State().Config.Line.Smooth)

	s.FlushStyle()
	require.NotNil(t, s.State().Config.Line.Smooth)
	assert.True(t, *s.State().Config.Line.Smooth)
}

func TestImmediateEditCommitsPendingFirst(t *testing.T) {
	s, _ := newSession(t, Options{Debounce: time.Hour})
	require.NoError(t, s.EditStyle(chart.BucketBar, chart.StyleConfig{Bar: chart.BarStyle{BarWidth: chart.Ptr(10)}}, true))
	require.NoError(t, s.EditStyle(chart.BucketBar, chart.StyleConfig{Bar: chart.BarStyle{BarWidth: chart.Ptr(90)}}, false))
	assert.Equal(t, 90, *s.State().Config.Bar.BarWidth)
}

func TestClassify(t *testing.T) {
	s, _ := newSession(t, Options{})
	s.LoadData(sales())

	c := s.Classify()
	assert.Equal(t, 2, c.Rows)
	assert.Equal(t, []ColumnInfo{{Name: "month", Kind: chart.KindText}, {Name: "sales", Kind: chart.KindNumeric}}, c.Columns)

	empty := Classify(chart.NewDataset([]string{"a"}, nil))
	assert.Equal(t, chart.ColumnKind(""), empty.Columns[0].Kind)
}

func TestExport(t *testing.T) {
	s, _ := newSession(t, Options{Width: 400, Height: 300})
	s.LoadData(sales())

	data, contentType, err := s.Export("yaml")
	require.NoError(t, err)
	assert.Equal(t, "application/yaml", contentType)
	assert.Contains(t, string(data), "type: bar")

	data, contentType, err = s.Export("png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	_, _, err = s.Export("gif")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestOptionWithoutData(t *testing.T) {
	s, _ := newSession(t, Options{})
	opt, err := s.Option()
	require.NoError(t, err)
	assert.Equal(t, chart.Bar, opt.Type)
	assert.Empty(t, opt.Series)
	require.NotNil(t, opt.Axes)
}

func TestWatchedFileReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"k":"a","v":1}]`), 0o644))

	s, _ := newSession(t, Options{Debounce: 20 * time.Millisecond})
	_, err := s.Load(context.Background(), datasource.Config{Type: datasource.KindFile, Path: path, Watch: true})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`[{"k":"a","v":1},{"k":"b","v":2}]`), 0o644))
	require.Eventually(t, func() bool { return s.Dataset().Len() == 2 }, 5*time.Second, 20*time.Millisecond)
}
