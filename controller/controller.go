// Package controller couples the configuration store, the option builders
// and a rendering backend. Whenever the store reports a change that affects
// the chart, the controller rebuilds the option and replaces it wholesale
// in the backend.
package controller

import (
	"time"

	"go.uber.org/zap"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/logger"
	"github.com/golammostafa13/chartstudio/store"
)

// Backend draws chart options. Render always receives a complete option
// that replaces whatever was drawn before.
type Backend interface {
	Render(opt chart.ChartOption) error
	Resize(width, height int) error
	Dispose() error
}

// BackendFactory creates a backend instance for a chart type.
type BackendFactory func(t chart.ChartType) (Backend, error)

// Controller is the composition root of the chart pipeline.
type Controller struct {
	store    *store.Store
	registry *chart.Registry
	factory  BackendFactory
	log      *zap.SugaredLogger

	backend     Backend
	backendType chart.ChartType
	option      *chart.ChartOption
	width       int
	height      int

	unsubscribe func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithRegistry overrides the default chart registry.
func WithRegistry(r *chart.Registry) Option {
	return func(c *Controller) { c.registry = r }
}

// WithLogger overrides the component logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Controller) { c.log = log }
}

// New subscribes a controller to s. The backend is created on the first render.
func New(s *store.Store, factory BackendFactory, opts ...Option) *Controller {
	c := &Controller{
		store:    s,
		registry: chart.DefaultRegistry(),
		factory:  factory,
		log:      logger.ComponentLogger("controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.unsubscribe = s.Subscribe(c.handle)
	return c
}

func (c *Controller) handle(e store.Event) {
	switch e.Kind {
	case store.EventDataChanged, store.EventMappingChanged,
		store.EventConfigUpdated, store.EventChartTypeChanged:
	default:
		return
	}
	if err := c.Refresh(); err != nil {
		c.log.Warnw("Chart refresh failed",
			logger.FieldEvent, string(e.Kind),
			logger.FieldChartType, c.store.ChartType(),
			logger.FieldError, err)
	}
}

// Refresh rebuilds the option for the active chart type and renders it.
// The new option is kept even when the backend fails to draw it.
func (c *Controller) Refresh() error {
	start := time.Now()
	t := c.store.ChartType()

	opt, err := c.registry.Build(t, c.store.Dataset(), c.store.Mapping(), c.store.Style())
	if err != nil {
		return err
	}
	c.option = &opt

	backend, err := c.ensureBackend(t)
	if err != nil {
		return err
	}
	if err := backend.Render(opt); err != nil {
		return errors.Wrapf(err, "render %s chart", t)
	}

	c.log.Debugw("Chart rendered",
		logger.FieldChartType, t,
		logger.FieldSeries, len(opt.Series),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return nil
}

// ensureBackend creates the backend on first use and recreates it when the
// chart type changed since it was created.
func (c *Controller) ensureBackend(t chart.ChartType) (Backend, error) {
	if c.backend != nil && c.backendType == t {
		return c.backend, nil
	}
	if c.backend != nil {
		if err := c.backend.Dispose(); err != nil {
			c.log.Warnw("Failed to dispose backend",
				logger.FieldChartType, c.backendType, logger.FieldError, err)
		}
		c.backend = nil
	}
	if c.factory == nil {
		return nil, errors.New("no rendering backend configured")
	}

	b, err := c.factory(t)
	if err != nil {
		return nil, errors.Wrapf(err, "create backend for %s", t)
	}
	if c.width > 0 && c.height > 0 {
		if err := b.Resize(c.width, c.height); err != nil {
			c.log.Warnw("Failed to size new backend", logger.FieldError, err)
		}
	}
	c.backend = b
	c.backendType = t
	return b, nil
}

// Resize records the container size and forwards it to the live backend.
func (c *Controller) Resize(width, height int) error {
	c.width, c.height = width, height
	if c.backend == nil {
		return nil
	}
	return c.backend.Resize(width, height)
}

// Option returns the most recently built option, or false before the first build.
func (c *Controller) Option() (chart.ChartOption, bool) {
	if c.option == nil {
		return chart.ChartOption{}, false
	}
	return *c.option, true
}

// Close unsubscribes from the store and disposes the backend.
func (c *Controller) Close() error {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.backend == nil {
		return nil
	}
	err := c.backend.Dispose()
	c.backend = nil
	return err
}
