// Package services exposes the chart pipeline as one session object that the
// HTTP API, the WebSocket hub and the CLI share.
//
// The store and controller are single-threaded. Session serialises every
// call into them with one mutex, including debounced style commits and
// file-watch reloads that fire on timer goroutines.
package services

import (
	"bytes"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/controller"
	"github.com/golammostafa13/chartstudio/datasource"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/export"
	"github.com/golammostafa13/chartstudio/logger"
	"github.com/golammostafa13/chartstudio/render"
	"github.com/golammostafa13/chartstudio/store"
)

// Options configure a Session. Zero values select defaults.
type Options struct {
	Registry *chart.Registry
	Backend  controller.BackendFactory
	Deps     datasource.Deps
	Debounce time.Duration
	Width    int
	Height   int
	Logger   *zap.SugaredLogger
}

type Session struct {
	mu sync.Mutex

	store    *store.Store
	ctrl     *controller.Controller
	registry *chart.Registry
	deps     datasource.Deps
	width    int
	height   int
	debounce time.Duration
	log      *zap.SugaredLogger

	styleDebouncer *store.Debouncer
	pendingStyle   chart.StyleConfig
	pendingBuckets map[chart.StyleBucket]bool

	watcher *datasource.FileWatcher
}

// NewSession wires a controller onto st.
func NewSession(st *store.Store, opts Options) *Session {
	s := &Session{
		store:          st,
		registry:       opts.Registry,
		deps:           opts.Deps,
		width:          opts.Width,
		height:         opts.Height,
		debounce:       opts.Debounce,
		log:            opts.Logger,
		pendingBuckets: make(map[chart.StyleBucket]bool),
	}
	if s.registry == nil {
		s.registry = chart.DefaultRegistry()
	}
	if s.log == nil {
		s.log = logger.ComponentLogger("session")
	}
	if s.debounce <= 0 {
		s.debounce = store.DefaultDebounce
	}
	backend := opts.Backend
	if backend == nil {
		backend = controller.Discard
	}

	s.ctrl = controller.New(st, backend, controller.WithRegistry(s.registry))
	if s.width > 0 && s.height > 0 {
		_ = s.ctrl.Resize(s.width, s.height)
	}
	s.styleDebouncer = store.NewDebouncer(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.commitStyle()
	})
	return s
}

// LoadData replaces the dataset.
func (s *Session) LoadData(ds chart.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetData(ds)
}

// Load fetches from the source described by cfg and makes it current. The
// fetch runs without holding the session lock. A file source with Watch set
// is reloaded whenever the file changes.
func (s *Session) Load(ctx context.Context, cfg datasource.Config) (chart.Dataset, error) {
	src, err := datasource.New(cfg, s.deps)
	if err != nil {
		return chart.Dataset{}, err
	}
	start := time.Now()
	ds, err := src.Fetch(ctx)
	if err != nil {
		return chart.Dataset{}, errors.Wrapf(err, "failed to load %s data source", cfg.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatcher()
	if fs, ok := src.(*datasource.FileSource); ok && cfg.Watch {
		if err := s.startWatcher(fs); err != nil {
			s.log.Warnw("File watch unavailable", logger.FieldPath, fs.Path, logger.FieldError, err)
		}
	}

	s.store.SetDataSourceConfig(cfg)
	s.store.SetData(ds)

	s.log.Infow("Data loaded",
		logger.FieldSource, string(cfg.Type),
		logger.FieldColumns, ds.Columns,
		logger.FieldRows, ds.Len(),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return ds, nil
}

// RunQuery loads the result of a read-only SQL query.
func (s *Session) RunQuery(ctx context.Context, query string) (chart.Dataset, error) {
	s.mu.Lock()
	s.store.SetQuery(query)
	s.mu.Unlock()
	return s.Load(ctx, datasource.Config{Type: datasource.KindSQL, Query: query})
}

// Reload fetches the current data source again.
func (s *Session) Reload(ctx context.Context) (chart.Dataset, error) {
	s.mu.Lock()
	cfg := s.store.DataSourceConfig()
	s.mu.Unlock()
	return s.Load(ctx, cfg)
}

func (s *Session) startWatcher(fs *datasource.FileSource) error {
	w, err := datasource.NewFileWatcher(fs, s.debounce, func(ds chart.Dataset, err error) {
		if err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.store.SetData(ds)
	})
	if err != nil {
		return err
	}
	w.Start()
	s.watcher = w
	return nil
}

func (s *Session) stopWatcher() {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Stop(); err != nil {
		s.log.Debugw("Failed to stop file watcher", logger.FieldError, err)
	}
	s.watcher = nil
}

// SetMapping merges a partial mapping.
func (s *Session) SetMapping(patch chart.MappingPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetMapping(patch)
}

// ResolveMapping re-derives the active family's mapping from the data.
func (s *Session) ResolveMapping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ResolveMapping()
}

// SetChartType switches the chart type. When the new type's family has no
// usable mapping for the current columns it is resolved afresh.
func (s *Session) SetChartType(t chart.ChartType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.registry.Lookup(t)
	if err != nil {
		return err
	}
	if err := s.store.SetChartType(t); err != nil {
		return err
	}
	ds := s.store.Dataset()
	if len(ds.Columns) > 0 && !s.store.Mapping().ValidFor(v.Family(), ds.Columns) {
		return s.store.ResolveMapping()
	}
	return nil
}

// EditStyle merges a style patch into one bucket. Debounced edits are held
// and committed together once edits stop arriving.
func (s *Session) EditStyle(bucket chart.StyleBucket, patch chart.StyleConfig, debounced bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !debounced {
		s.commitStyle()
		return s.store.SetStyle(bucket, patch)
	}
	merged, err := s.pendingStyle.MergeBucket(bucket, patch)
	if err != nil {
		return err
	}
	s.pendingStyle = merged
	s.pendingBuckets[bucket] = true
	s.styleDebouncer.Trigger()
	return nil
}

// EditStyleJSON decodes a JSON patch for the named bucket and applies it.
func (s *Session) EditStyleJSON(bucket string, data []byte, debounced bool) error {
	b, err := chart.ParseStyleBucket(bucket)
	if err != nil {
		return err
	}
	patch, err := chart.DecodeStylePatch(b, data)
	if err != nil {
		return err
	}
	return s.EditStyle(b, patch, debounced)
}

// FlushStyle commits pending debounced edits now.
func (s *Session) FlushStyle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styleDebouncer.Stop()
	s.commitStyle()
}

// commitStyle applies held edits. Callers hold s.mu.
func (s *Session) commitStyle() {
	if len(s.pendingBuckets) == 0 {
		return
	}
	for _, b := range chart.StyleBuckets {
		if !s.pendingBuckets[b] {
			continue
		}
		if err := s.store.SetStyle(b, s.pendingStyle); err != nil {
			s.log.Warnw("Failed to commit style", logger.FieldBucket, b, logger.FieldError, err)
		}
	}
	s.pendingStyle = chart.StyleConfig{}
	s.pendingBuckets = make(map[chart.StyleBucket]bool)
}

// Refresh rebuilds and re-renders the chart, returning any backend error.
func (s *Session) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Refresh()
}

// Resize forwards a container size to the backend.
func (s *Session) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	return s.ctrl.Resize(width, height)
}

// State returns the persisted configuration.
func (s *Session) State() store.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Dataset returns a copy of the current dataset.
func (s *Session) Dataset() chart.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Dataset().Clone()
}

// Classification describes the current dataset's columns in column order.
type Classification struct {
	Columns []ColumnInfo `json:"columns"`
	Rows    int          `json:"rows"`
}

type ColumnInfo struct {
	Name string           `json:"name"`
	Kind chart.ColumnKind `json:"kind"`
}

// Classify reports the kind of every column of the current dataset.
func (s *Session) Classify() Classification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Classify(s.store.Dataset())
}

// Classify describes ds. Columns of an empty dataset have no kind.
func Classify(ds chart.Dataset) Classification {
	kinds := chart.Classify(ds)
	out := Classification{Columns: make([]ColumnInfo, 0, len(ds.Columns)), Rows: ds.Len()}
	for _, c := range ds.Columns {
		out.Columns = append(out.Columns, ColumnInfo{Name: c, Kind: kinds[c]})
	}
	return out
}

// Option builds the option for the current configuration.
func (s *Session) Option() (chart.ChartOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.option()
}

func (s *Session) option() (chart.ChartOption, error) {
	return s.registry.Build(s.store.ChartType(), s.store.Dataset(), s.store.Mapping(), s.store.Style())
}

// Export renders the current option in format, which is an export format
// or an image format. It returns the payload and its content type.
func (s *Session) Export(format string) ([]byte, string, error) {
	s.mu.Lock()
	opt, err := s.option()
	width, height := s.width, s.height
	s.mu.Unlock()
	if err != nil {
		return nil, "", err
	}

	if img, err := render.ParseFormat(format); err == nil {
		var buf bytes.Buffer
		if err := render.Draw(&buf, opt, img, width, height); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), img.ContentType(), nil
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, "", errors.WithHint(err, "image formats: png, svg")
	}
	data, err := export.Export(opt, f)
	if err != nil {
		return nil, "", err
	}
	return data, f.ContentType(), nil
}

// Close commits pending style edits, stops watching and disposes the backend.
func (s *Session) Close() error {
	s.FlushStyle()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatcher()
	return s.ctrl.Close()
}
