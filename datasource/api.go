package datasource

import (
	"context"
	"io"
	"net/http"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/logger"
)

// maxResponseBytes bounds API responses read into memory.
const maxResponseBytes = 32 << 20

// APISource GETs a JSON document and extracts rows from it.
type APISource struct {
	URL      string
	Headers  map[string]string
	DataPath string
	Client   *http.Client
}

func (s *APISource) Fetch(ctx context.Context) (chart.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return chart.Dataset{}, errors.Wrapf(errors.ErrInvalidRequest, "bad url %q: %v", s.URL, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return chart.Dataset{}, errors.Wrapf(err, "failed to fetch %s", s.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return chart.Dataset{}, errors.Newf("fetch %s: unexpected status %d", s.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return chart.Dataset{}, errors.Wrapf(err, "failed to read response from %s", s.URL)
	}

	ds, err := ParseRows(body, s.DataPath)
	if err != nil {
		return chart.Dataset{}, err
	}
	logger.ComponentLogger("datasource").Debugw("Fetched API data",
		logger.FieldURL, s.URL,
		logger.FieldRows, ds.Len(),
		logger.FieldColumns, len(ds.Columns))
	return ds, nil
}
