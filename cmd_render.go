package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/controller"
	"github.com/golammostafa13/chartstudio/datasource"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/render"
	"github.com/golammostafa13/chartstudio/services"
	"github.com/golammostafa13/chartstudio/store"
)

// chartFlags are shared by render and export.
type chartFlags struct {
	data      string
	dataPath  string
	chartType string
	style     string
	width     int
	height    int
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.data, "data", "", "JSON file with the rows, or - for stdin")
	cmd.Flags().StringVar(&f.dataPath, "data-path", "", "path to the row array inside the document")
	cmd.Flags().StringVar(&f.chartType, "type", string(chart.DefaultChartType), "chart type: line, bar, pie, donut")
	cmd.Flags().StringVar(&f.style, "style", "", "JSON file with a style configuration")
	cmd.Flags().IntVar(&f.width, "width", 0, "image width in pixels")
	cmd.Flags().IntVar(&f.height, "height", 0, "image height in pixels")
	_ = cmd.MarkFlagRequired("data")
}

func (f *chartFlags) size() (int, int) {
	w, h := f.width, f.height
	if w <= 0 {
		w = cfg.Render.Width
	}
	if h <= 0 {
		h = cfg.Render.Height
	}
	return w, h
}

// session builds an in-memory session with the flags applied.
func (f *chartFlags) session(ctx context.Context, backend controller.BackendFactory) (*services.Session, error) {
	t, err := chart.ParseChartType(f.chartType)
	if err != nil {
		return nil, err
	}
	ds, err := readDataset(f.data, f.dataPath)
	if err != nil {
		return nil, err
	}
	var style chart.StyleConfig
	if f.style != "" {
		data, err := os.ReadFile(f.style)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", f.style)
		}
		if err := json.Unmarshal(data, &style); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidRequest, "decode style %s: %v", f.style, err)
		}
	}

	w, h := f.size()
	s := services.NewSession(store.New(ctx, nil), services.Options{Backend: backend, Width: w, Height: h})
	s.LoadData(ds)
	if err := s.SetChartType(t); err != nil {
		s.Close()
		return nil, err
	}
	for _, b := range chart.StyleBuckets {
		if err := s.EditStyle(b, style, false); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func readDataset(path, dataPath string) (chart.Dataset, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return chart.Dataset{}, errors.Wrap(err, "failed to read stdin")
		}
		return datasource.ParseRows(data, dataPath)
	}
	src := &datasource.FileSource{Path: path, DataPath: dataPath}
	return src.Fetch(context.Background())
}

var (
	renderFlags chartFlags
	renderOut   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw a chart to a PNG or SVG file",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, h := renderFlags.size()
		file := render.NewFile(renderOut, w, h)

		s, err := renderFlags.session(cmd.Context(), func(chart.ChartType) (controller.Backend, error) {
			return file, nil
		})
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Refresh(); err != nil {
			return err
		}
		pterm.Success.Printfln("Wrote %s", file.Path())
		return nil
	},
}

func init() {
	renderFlags.register(renderCmd)
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "chart.png", "output file; .svg writes SVG")
}
