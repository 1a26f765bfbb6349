package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/errors"
)

func TestParseRowsKeepsKeyOrder(t *testing.T) {
	ds, err := ParseRows([]byte(`[
		{"month": "Jan", "sales": 120, "active": true, "note": null},
		{"month": "Feb", "sales": 150, "extra": {"a": 1}}
	]`), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"month", "sales", "active", "note", "extra"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, chart.Row{"month": "Jan", "sales": 120.0, "active": true, "note": nil}, ds.Rows[0])
	assert.Equal(t, `{"a": 1}`, ds.Rows[1]["extra"])
}

func TestParseRowsDataPath(t *testing.T) {
	ds, err := ParseRows([]byte(`{"data": {"items": [{"k": "a", "v": 1}]}}`), "data.items")
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "v"}, ds.Columns)

	_, err = ParseRows([]byte(`{"data": []}`), "nope")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestParseRowsRejectsNonArrays(t *testing.T) {
	_, err := ParseRows([]byte(`{"k": 1}`), "")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = ParseRows([]byte(`[{"k": 1`), "")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestParseRowsEmpty(t *testing.T) {
	ds, err := ParseRows(nil, "")
	require.NoError(t, err)
	assert.Empty(t, ds.Columns)
	assert.Empty(t, ds.Rows)

	ds, err = ParseRows([]byte(`[]`), "")
	require.NoError(t, err)
	assert.Empty(t, ds.Rows)
}

func TestAPISource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result": [{"city": "Oslo", "temp": "4.5"}]}`))
	}))
	defer srv.Close()

	src, err := New(Config{
		Type:     KindAPI,
		URL:      srv.URL,
		Headers:  map[string]string{"X-Token": "secret"},
		DataPath: "result",
	}, Deps{HTTPClient: srv.Client()})
	require.NoError(t, err)

	ds, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "temp"}, ds.Columns)
	assert.Equal(t, "4.5", ds.Rows[0]["temp"])
}

func TestAPISourceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	src := &APISource{URL: srv.URL, Client: srv.Client()}
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

type fakeRunner struct {
	query string
	ds    chart.Dataset
}

func (f *fakeRunner) Query(_ context.Context, q string) (chart.Dataset, error) {
	f.query = q
	return f.ds, nil
}

func TestNewDispatch(t *testing.T) {
	runner := &fakeRunner{ds: chart.NewDataset([]string{"a"}, []chart.Row{{"a": 1}})}

	src, err := New(Config{Type: KindSQL, Query: "SELECT 1"}, Deps{SQL: runner})
	require.NoError(t, err)
	ds, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", runner.query)
	assert.Equal(t, 1, ds.Len())

	_, err = New(Config{Type: KindSQL, Query: "SELECT 1"}, Deps{})
	assert.True(t, errors.Is(err, errors.ErrUnsupportedSource))

	_, err = New(Config{Type: KindAPI}, Deps{})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = New(Config{Type: "csv"}, Deps{})
	assert.True(t, errors.Is(err, errors.ErrUnsupportedSource))

	src, err = New(Config{Type: KindStatic, JSON: `[{"x": "a"}]`}, Deps{})
	require.NoError(t, err)
	ds, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ds.Columns)
}

func TestFileSourceAndWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"k": "a", "v": 1}]`), 0o644))

	src := &FileSource{Path: path}
	ds, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	changes := make(chan chart.Dataset, 4)
	w, err := NewFileWatcher(src, 20*time.Millisecond, func(ds chart.Dataset, err error) {
		if err != nil {
			return
		}
		select {
		case changes <- ds:
		default:
		}
	})
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`[{"k": "a", "v": 1}, {"k": "b", "v": 2}]`), 0o644))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ds := <-changes:
			if ds.Len() == 2 {
				return
			}
		case <-timeout:
			t.Fatal("watcher did not report the change")
		}
	}
}
