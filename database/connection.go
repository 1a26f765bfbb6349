// Package database connects to PostgreSQL and runs read-only chart queries.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/logger"
)

// Drivers Open understands.
const (
	DriverPGX      = "pgx"
	DriverPostgres = "postgres"
)

// DefaultMaxConns is the pool size when none is configured.
const DefaultMaxConns = 10

// Config holds connection settings. DSN wins over the individual fields.
type Config struct {
	Driver   string
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int32
}

// Configured reports whether enough is set to attempt a connection.
func (c Config) Configured() bool {
	return c.DSN != "" || c.Host != ""
}

// ConnString returns DSN or builds a key/value connection string.
func (c Config) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// Open connects and pings. The pgx driver goes through a pgxpool exposed as
// a database/sql handle; the postgres driver uses lib/pq.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Source, error) {
	log := logger.ComponentLogger("database")

	var (
		db   *sql.DB
		pool *pgxpool.Pool
	)
	switch cfg.Driver {
	case DriverPGX, "":
		pc, err := pgxpool.ParseConfig(cfg.ConnString())
		if err != nil {
			return nil, errors.Wrap(err, "unable to parse database config")
		}
		pc.MaxConns = DefaultMaxConns
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		pool, err = pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			return nil, errors.Wrap(err, "unable to create connection pool")
		}
		db = stdlib.OpenDBFromPool(pool)
	case DriverPostgres:
		var err error
		db, err = sql.Open(DriverPostgres, cfg.ConnString())
		if err != nil {
			return nil, errors.Wrap(err, "unable to open database")
		}
		if cfg.MaxConns > 0 {
			db.SetMaxOpenConns(int(cfg.MaxConns))
		}
	default:
		return nil, errors.WithHintf(
			errors.Newf("unknown database driver %q", cfg.Driver),
			"supported drivers: %s, %s", DriverPGX, DriverPostgres)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if pool != nil {
			pool.Close()
		}
		return nil, errors.Wrap(err, "unable to ping database")
	}

	log.Infow("Connected to database",
		"driver", driverName(cfg.Driver),
		"host", cfg.Host,
		"database", cfg.Name)

	s := NewSource(db, append([]Option{WithLogger(log)}, opts...)...)
	s.pool = pool
	return s, nil
}

func driverName(d string) string {
	if d == "" {
		return DriverPGX
	}
	return d
}

// Option configures a Source.
type Option func(*Source)

// WithLogger overrides the component logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Source) { s.log = log }
}

// WithMaxRows caps the rows a query may return; zero means no cap.
func WithMaxRows(n int) Option {
	return func(s *Source) { s.maxRows = n }
}
