package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/services"
)

var (
	classifyData     string
	classifyDataPath string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Show which columns are numeric and the default mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := readDataset(classifyData, classifyDataPath)
		if err != nil {
			return err
		}
		c := services.Classify(ds)

		table := pterm.TableData{{"Column", "Kind", "First value"}}
		for _, col := range c.Columns {
			kind := string(col.Kind)
			if kind == "" {
				kind = "-"
			}
			first := ""
			if ds.Len() > 0 {
				first = chart.FormatValue(ds.Rows[0][col.Name])
			}
			table = append(table, []string{col.Name, kind, first})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
			return err
		}

		m := chart.ResolveAll(ds)
		pterm.Info.Printfln("%d rows", c.Rows)
		pterm.Info.Printfln("line/bar: category %q, values %q", m.XAxis, m.YAxis)
		pterm.Info.Printfln("pie/donut: name %q, value %q", m.NameField, m.ValueField)
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyData, "data", "", "JSON file with the rows, or - for stdin")
	classifyCmd.Flags().StringVar(&classifyDataPath, "data-path", "", "path to the row array inside the document")
	_ = classifyCmd.MarkFlagRequired("data")
}
