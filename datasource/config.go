// Package datasource loads datasets from the places a user can point at:
// SQL queries, HTTP JSON APIs, inline JSON and JSON files.
package datasource

import (
	"context"
	"net/http"
	"time"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/errors"
)

// Kind names a data source adapter.
type Kind string

const (
	KindSQL    Kind = "sql"
	KindAPI    Kind = "api"
	KindStatic Kind = "static"
	KindFile   Kind = "file"
)

// Config describes where data comes from. It is persisted with the session.
type Config struct {
	Type     Kind              `json:"type"`
	Query    string            `json:"query,omitempty"`
	URL      string            `json:"url,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	DataPath string            `json:"dataPath,omitempty"`
	Path     string            `json:"path,omitempty"`
	JSON     string            `json:"json,omitempty"`
	Watch    bool              `json:"watch,omitempty"`
}

// DefaultConfig is the data source of a fresh session.
func DefaultConfig() Config {
	return Config{Type: KindStatic}
}

// redacted replaces header values in configs shown to clients.
const redacted = "[redacted]"

// Redacted returns a copy of c with every header value masked, for responses
// that expose the session state.
func (c Config) Redacted() Config {
	if len(c.Headers) == 0 {
		return c
	}
	headers := make(map[string]string, len(c.Headers))
	for k := range c.Headers {
		headers[k] = redacted
	}
	c.Headers = headers
	return c
}

// Source produces a dataset.
type Source interface {
	Fetch(ctx context.Context) (chart.Dataset, error)
}

// SQLRunner executes a read-only query; database.Source implements it.
type SQLRunner interface {
	Query(ctx context.Context, query string) (chart.Dataset, error)
}

// Deps are the collaborators New may need.
type Deps struct {
	SQL        SQLRunner
	HTTPClient *http.Client
}

// New builds the Source described by cfg.
func New(cfg Config, deps Deps) (Source, error) {
	switch cfg.Type {
	case KindSQL:
		if deps.SQL == nil {
			return nil, errors.WithHint(errors.Wrap(errors.ErrUnsupportedSource, "sql"),
				"configure database.dsn or the POSTGRES_* variables")
		}
		if cfg.Query == "" {
			return nil, errors.Wrap(errors.ErrInvalidRequest, "sql data source needs a query")
		}
		return &sqlSource{runner: deps.SQL, query: cfg.Query}, nil
	case KindAPI:
		if cfg.URL == "" {
			return nil, errors.Wrap(errors.ErrInvalidRequest, "api data source needs a url")
		}
		client := deps.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: 30 * time.Second}
		}
		return &APISource{URL: cfg.URL, Headers: cfg.Headers, DataPath: cfg.DataPath, Client: client}, nil
	case KindStatic, "":
		return &StaticSource{Data: []byte(cfg.JSON), DataPath: cfg.DataPath}, nil
	case KindFile:
		if cfg.Path == "" {
			return nil, errors.Wrap(errors.ErrInvalidRequest, "file data source needs a path")
		}
		return &FileSource{Path: cfg.Path, DataPath: cfg.DataPath}, nil
	}
	return nil, errors.Wrapf(errors.ErrUnsupportedSource, "%q", string(cfg.Type))
}

type sqlSource struct {
	runner SQLRunner
	query  string
}

func (s *sqlSource) Fetch(ctx context.Context) (chart.Dataset, error) {
	return s.runner.Query(ctx, s.query)
}
