package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/logger"
	"github.com/golammostafa13/chartstudio/utils"
)

// Source runs read-only queries and returns their result as a dataset.
type Source struct {
	db      *sql.DB
	pool    *pgxpool.Pool
	maxRows int
	log     *zap.SugaredLogger
}

// NewSource wraps an open handle.
func NewSource(db *sql.DB, opts ...Option) *Source {
	s := &Source{db: db, log: logger.ComponentLogger("database")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query validates q, executes it and scans every row. Column order follows
// the result set.
func (s *Source) Query(ctx context.Context, q string) (chart.Dataset, error) {
	if err := utils.CheckSQL(q); err != nil {
		return chart.Dataset{}, err
	}
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return chart.Dataset{}, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return chart.Dataset{}, errors.Wrap(err, "failed to read columns")
	}

	var results []chart.Row
	for rows.Next() {
		if s.maxRows > 0 && len(results) >= s.maxRows {
			s.log.Warnw("Query result truncated",
				logger.FieldQuery, q,
				logger.FieldRows, s.maxRows)
			break
		}

		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return chart.Dataset{}, errors.Wrap(err, "failed to scan row")
		}

		row := make(chart.Row, len(columns))
		for i, col := range columns {
			row[col] = normalize(values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return chart.Dataset{}, errors.Wrap(err, "error after iterating rows")
	}

	s.log.Debugw("Query executed",
		logger.FieldColumns, columns,
		logger.FieldRows, len(results),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return chart.NewDataset(columns, results), nil
}

// normalize turns driver values into the scalar types the chart pipeline
// understands. Dates without a time of day become YYYY-MM-DD.
func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339)
	}
	return v
}

// Close releases the handle and, for the pgx driver, the pool.
func (s *Source) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}
