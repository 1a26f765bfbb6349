package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/golammostafa13/chartstudio/controller"
	"github.com/golammostafa13/chartstudio/errors"
)

var (
	exportFlags  chartFlags
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the chart as an ECharts or Chart.js snippet, JSON, YAML or an image",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := exportFlags.session(cmd.Context(), controller.Discard)
		if err != nil {
			return err
		}
		defer s.Close()

		data, _, err := s.Export(exportFormat)
		if err != nil {
			return err
		}
		if exportOut == "" || exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", exportOut)
		}
		return nil
	},
}

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "echarts", "echarts, chartjs, json, yaml, png or svg")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}
