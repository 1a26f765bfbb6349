// Package store holds the session's chart configuration: the active chart
// type, the field mapping, the style configuration and the data source
// settings, plus the current dataset.
//
// Every mutation is a partial merge that is persisted immediately and then
// announced to subscribers synchronously, inline in the mutating call. The
// store has no locks; callers serialise access (see services.Session).
package store

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/datasource"
	"github.com/golammostafa13/chartstudio/kv"
	"github.com/golammostafa13/chartstudio/logger"
)

// persistTimeout bounds a single state write.
const persistTimeout = 5 * time.Second

type subscription struct {
	id int
	fn Listener
}

// Store is the configuration store. Create one with New.
type Store struct {
	kv  kv.Store
	key string
	log *zap.SugaredLogger

	state   State
	dataset chart.Dataset

	subs   []subscription
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the persistence key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger overrides the component logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a store and rehydrates it from kv. A nil kv keeps state in
// memory. Load failures are logged and leave the defaults in place.
func New(ctx context.Context, store kv.Store, opts ...Option) *Store {
	if store == nil {
		store = kv.NewMemory()
	}
	s := &Store{
		kv:      store,
		key:     DefaultKey,
		log:     logger.ComponentLogger("store"),
		state:   DefaultState(),
		dataset: chart.NewDataset(nil, nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	data, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.log.Warnw("Failed to read persisted state, using defaults",
			logger.FieldKey, s.key, logger.FieldError, err)
		return
	}
	if !found {
		return
	}
	s.state = decodeState(data, s.log)
	s.log.Debugw("Rehydrated state",
		logger.FieldKey, s.key,
		logger.FieldChartType, s.state.ChartType)
}

func (s *Store) persist() {
	data, err := json.Marshal(s.state)
	if err != nil {
		s.log.Errorw("Failed to encode state", logger.FieldError, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.log.Errorw("Failed to persist state", logger.FieldKey, s.key, logger.FieldError, err)
	}
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) emit(e Event) {
	subs := append([]subscription{}, s.subs...)
	for _, sub := range subs {
		sub.fn(e)
	}
}

// SetData replaces the dataset. Each family whose mapping is empty or names
// a column that is gone is re-resolved. DataChanged is emitted even when the
// dataset is empty.
func (s *Store) SetData(ds chart.Dataset) {
	ds = chart.NewDataset(ds.Columns, ds.Rows)
	s.dataset = ds

	mapping := s.state.DataMapping
	for _, f := range chart.Families {
		if !mapping.ValidFor(f, ds.Columns) {
			mapping = mapping.WithFamily(f, chart.Resolve(ds, f))
			s.log.Debugw("Resolved default mapping",
				logger.FieldFamily, f.String(),
				logger.FieldColumns, ds.Columns)
		}
	}
	s.state.DataMapping = mapping

	s.persist()
	s.emit(Event{Kind: EventDataChanged, Dataset: ds, Mapping: mapping.Clone()})
}

// SetMapping merges a partial mapping without validating column names.
func (s *Store) SetMapping(patch chart.MappingPatch) {
	s.state.DataMapping = s.state.DataMapping.Merge(patch)
	s.persist()
	s.emit(Event{Kind: EventMappingChanged, Mapping: s.state.DataMapping.Clone()})
}

// ResolveMapping re-runs the resolver for the active chart type's family and
// overwrites that family's fields.
func (s *Store) ResolveMapping() error {
	f, err := chart.FamilyOf(s.state.ChartType)
	if err != nil {
		return err
	}
	s.state.DataMapping = s.state.DataMapping.WithFamily(f, chart.Resolve(s.dataset, f))
	s.persist()
	s.emit(Event{Kind: EventMappingChanged, Mapping: s.state.DataMapping.Clone()})
	return nil
}

// SetChartType switches the active chart type. It does not re-resolve the
// mapping. Unknown types are rejected with ErrUnknownChartType.
func (s *Store) SetChartType(t chart.ChartType) error {
	if _, err := chart.ParseChartType(string(t)); err != nil {
		return err
	}
	if t == s.state.ChartType {
		return nil
	}
	prev := s.state.ChartType
	s.state.ChartType = t
	s.persist()
	s.emit(Event{Kind: EventChartTypeChanged, ChartType: t, Previous: prev})
	return nil
}

// SetStyle merges patch's bucket into the style configuration.
func (s *Store) SetStyle(bucket chart.StyleBucket, patch chart.StyleConfig) error {
	merged, err := s.state.Config.MergeBucket(bucket, patch)
	if err != nil {
		return err
	}
	s.state.Config = merged
	s.persist()
	s.emit(Event{Kind: EventConfigUpdated, Bucket: bucket})
	return nil
}

// SetQuery records the SQL text being edited.
func (s *Store) SetQuery(q string) {
	s.state.Query = q
	s.persist()
	s.emit(Event{Kind: EventDataSourceChanged})
}

// SetDataSourceConfig replaces the data source settings.
func (s *Store) SetDataSourceConfig(cfg datasource.Config) {
	s.state.DataSourceConfig = cfg
	if cfg.Type == datasource.KindSQL && cfg.Query != "" {
		s.state.Query = cfg.Query
	}
	s.persist()
	s.emit(Event{Kind: EventDataSourceChanged})
}

// Dataset returns the current dataset. Callers must not modify its rows.
func (s *Store) Dataset() chart.Dataset { return s.dataset }

func (s *Store) ChartType() chart.ChartType { return s.state.ChartType }

func (s *Store) Mapping() chart.Mapping { return s.state.DataMapping.Clone() }

func (s *Store) Style() chart.StyleConfig { return s.state.Config.Clone() }

func (s *Store) Query() string { return s.state.Query }

func (s *Store) DataSourceConfig() datasource.Config {
	return s.state.Clone().DataSourceConfig
}

// Snapshot returns a copy of the persisted state.
func (s *Store) Snapshot() State { return s.state.Clone() }
