package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"asean-population/internal/chart"
	"asean-population/internal/config"
	"asean-population/internal/dashboard"
	"asean-population/internal/excel"
	"asean-population/internal/logging"
	"asean-population/internal/metrics"
	"asean-population/internal/pipeline"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    config.Config
	logger *zap.Logger

	// swapped in tests
	newLogger     = logging.New
	buildPipeline = func(ctx context.Context, m *metrics.Collector) (*pipeline.Dashboard, error) {
		return pipeline.Build(ctx, pipeline.NewDeps(logger, m))
	}
)

var rootCmd = &cobra.Command{
	Use:   "asean-pop",
	Short: "ASEAN population choropleth dashboard",
	Long: `Loads the ASEAN country list from the published spreadsheet, looks up the
2022 total population of each country on the World Bank API and shows the
result as a choropleth map on a single dashboard page.

Run without a subcommand to serve the dashboard on $PORT (default 9595).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.FromEnv()
		var err error
		logger, err = newLogger(cfg.LogLevel)
		return err
	},
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the map once and serve the dashboard",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the resolved populations and the skipped countries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildPipeline(cmd.Context(), nil)
		if err != nil {
			return err
		}
		return printTable(cmd.OutOrStdout(), d)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file.xlsx]",
	Short: "Write the resolved populations to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildPipeline(cmd.Context(), nil)
		if err != nil {
			return err
		}
		if err := excel.WriteResult(args[0], d.Records(), d.Skips()); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d countries written to %s\n", len(d.Records()), args[0])
		return nil
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart [file.png]",
	Short: "Render the resolved populations as a PNG bar chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildPipeline(cmd.Context(), nil)
		if err != nil {
			return err
		}
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := chart.WritePNG(f, d.Records(), ""); err != nil {
			f.Close()
			return fmt.Errorf("chart: %w", err)
		}
		return f.Close()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, tableCmd, exportCmd, chartCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	gin.SetMode(gin.ReleaseMode)

	m, err := metrics.NewCollector(nil)
	if err != nil {
		return err
	}
	d, err := buildPipeline(cmd.Context(), m)
	if err != nil {
		return err
	}
	r, err := dashboard.NewRouter(d.Page, dashboard.Options{Logger: logger, Metrics: m})
	if err != nil {
		return err
	}
	return dashboard.Serve(cmd.Context(), cfg.Addr(), r, logger)
}

func printTable(w io.Writer, d *pipeline.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "country\twb_code\tlat\tlon\tpopulation\tmillions")
	for _, r := range d.Records() {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%s\t%.2f\n",
			r.Name, r.Code, r.Loc.Lat, r.Loc.Lon, humanize.Commaf(r.Raw), r.PopulationMillions)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, s := range d.Skips() {
		fmt.Fprintf(w, "skipped %s\n", s)
	}
	return nil
}

// run executes the command tree and flushes the logger on every exit path.
// Cobra skips post-run hooks when RunE fails.
func run(ctx context.Context) error {
	defer syncLogger()
	return rootCmd.ExecuteContext(ctx)
}

func syncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Exit(1)
	}
}
