package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/golammostafa13/chartstudio/config"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/logger"
)

var (
	cfgFile string
	v       = config.New()
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "chartstudio",
	Short: "Turn tabular data into chart definitions",
	Long: `chartstudio maps rows from SQL, HTTP APIs or JSON files onto line, bar,
pie and donut charts, and renders or exports the result.

Examples:
  chartstudio serve                                  # HTTP + WebSocket API
  chartstudio render --data sales.json --type line   # write chart.png
  chartstudio export --data sales.json --format yaml # print the chart option
  chartstudio classify --data sales.json             # show column kinds`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dotEnvErr := config.LoadDotEnv(".env")

		loaded, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		if err := logger.Initialize(cfg.Log.JSON); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		if dotEnvErr != nil {
			logger.Logger.Debugw("Continuing without .env", logger.FieldError, dotEnvErr)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./chartstudio.yaml)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit JSON logs")
	_ = v.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("log-json"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(classifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
