// Package errors provides error handling for chartstudio.
//
// It re-exports github.com/cockroachdb/errors so every package wraps errors the
// same way and keeps stack traces:
//
//	if err := src.Fetch(ctx); err != nil {
//	    return errors.Wrap(err, "failed to load data source")
//	}
//
// Sentinels below are checked with errors.Is.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

var (
	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrUnknownChartType is returned when a chart type has no registered variant.
	// It signals a programming error rather than user data variance.
	ErrUnknownChartType = New("unknown chart type")

	// ErrUnknownStyleBucket is returned by SetStyle for buckets other than base/line/bar/pie
	ErrUnknownStyleBucket = New("unknown style bucket")

	// ErrForbiddenQuery indicates a SQL statement that is not read-only
	ErrForbiddenQuery = New("query contains forbidden operations")

	// ErrUnsupportedSource indicates a data source type with no adapter
	ErrUnsupportedSource = New("unsupported data source")

	// ErrSourceNotAllowed indicates a data source the server is not configured to load
	ErrSourceNotAllowed = New("data source not allowed")

	// ErrNothingToDraw is returned by rendering backends when an option has no drawable data
	ErrNothingToDraw = New("nothing to draw")
)

// IsClientError reports whether err was caused by caller input and should map to 400.
func IsClientError(err error) bool {
	return IsAny(err, ErrInvalidRequest, ErrUnknownChartType, ErrUnknownStyleBucket,
		ErrForbiddenQuery, ErrUnsupportedSource, ErrSourceNotAllowed)
}
