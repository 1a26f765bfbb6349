package datasource

import (
	"context"
	"os"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/errors"
)

// StaticSource serves inline JSON.
type StaticSource struct {
	Data     []byte
	DataPath string
}

func (s *StaticSource) Fetch(context.Context) (chart.Dataset, error) {
	return ParseRows(s.Data, s.DataPath)
}

// FileSource reads a JSON file on every fetch.
type FileSource struct {
	Path     string
	DataPath string
}

func (s *FileSource) Fetch(context.Context) (chart.Dataset, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return chart.Dataset{}, errors.Wrapf(err, "failed to read %s", s.Path)
	}
	return ParseRows(data, s.DataPath)
}
