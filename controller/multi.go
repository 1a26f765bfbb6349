package controller

import "github.com/golammostafa13/chartstudio/chart"

type multi []Backend

// Fanout returns a factory whose backends forward every call to one backend
// from each of factories. Calls continue past failures; the first error is
// returned.
func Fanout(factories ...BackendFactory) BackendFactory {
	return func(t chart.ChartType) (Backend, error) {
		m := make(multi, 0, len(factories))
		for _, f := range factories {
			b, err := f(t)
			if err != nil {
				m.Dispose()
				return nil, err
			}
			m = append(m, b)
		}
		return m, nil
	}
}

func (m multi) each(fn func(Backend) error) error {
	var first error
	for _, b := range m {
		if err := fn(b); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m multi) Render(opt chart.ChartOption) error {
	return m.each(func(b Backend) error { return b.Render(opt) })
}

func (m multi) Resize(width, height int) error {
	return m.each(func(b Backend) error { return b.Resize(width, height) })
}

func (m multi) Dispose() error {
	return m.each(func(b Backend) error { return b.Dispose() })
}

// Discard is a factory for a backend that accepts and drops every call.
func Discard(chart.ChartType) (Backend, error) { return discard{}, nil }

type discard struct{}

func (discard) Render(chart.ChartOption) error { return nil }
func (discard) Resize(int, int) error         { return nil }
func (discard) Dispose() error                { return nil }

