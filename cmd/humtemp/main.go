// Package main provides the CLI entrypoint for humtemp.
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/humtemp/internal/config"
	"github.com/verte-zerg/humtemp/internal/dashboard"
	"github.com/verte-zerg/humtemp/internal/dataset"
	"github.com/verte-zerg/humtemp/internal/export"
	"github.com/verte-zerg/humtemp/internal/model"
	"github.com/verte-zerg/humtemp/internal/regression"
	"github.com/verte-zerg/humtemp/internal/report"
	"github.com/verte-zerg/humtemp/internal/store"
)

var (
	dataPath     string
	dashBins     int
	dashHumidity float64

	fitPlot   bool
	fitNoSave bool

	predictHumidity float64

	residualsModel string
	residualsBins  int
	residualsPlot  bool

	exportOut  string
	exportGzip bool

	historyLast int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "humtemp",
		Short:         "Humidity to temperature regression dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dataPath, "data", model.DefaultDataPath, "dataset CSV (date,humidity,temperature)")
	rootCmd.Flags().IntVar(&dashBins, "bins", regression.DefaultBins, "histogram bins for residuals")
	rootCmd.Flags().Float64Var(&dashHumidity, "rh", model.DefaultHumidity, "initial RH for the prediction slider (0-100)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newFitCmd())
	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newResidualsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

// loadConfig merges the config file into the flag values that were not set
// explicitly on the command line.
func loadConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "data", &dataPath, fileCfg.Dashboard.Data)
	applyIntConfig(cmd, "bins", &dashBins, fileCfg.Dashboard.Bins)
	applyFloatConfig(cmd, "rh", &dashHumidity, fileCfg.Dashboard.Humidity)

	cfg := model.Config{
		DataPath: dataPath,
		Bins:     dashBins,
		Humidity: dashHumidity,
	}
	if fileCfg.Export.Dir != nil {
		cfg.ExportDir = *fileCfg.Export.Dir
	}
	if fileCfg.Export.Gzip != nil {
		cfg.ExportGzip = *fileCfg.Export.Gzip
	}
	applyBoolConfig(cmd, "gzip", &exportGzip, fileCfg.Export.Gzip)
	return cfg, nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	r, fingerprint, err := loadReport(cfg.DataPath)
	if err != nil {
		return err
	}

	var rec dashboard.Recorder
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("failed to open db, fit history disabled: %v\n", err)
	} else {
		rec = st
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	m := dashboard.NewModel(r, cfg, rec, fingerprint)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit both models and print the report",
		Args:  cobra.NoArgs,
		RunE:  runFitCmd,
	}
	cmd.Flags().BoolVar(&fitPlot, "plot", false, "include braille plots")
	cmd.Flags().BoolVar(&fitNoSave, "no-save", false, "do not record the fit in history")
	return cmd
}

func runFitCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	r, fingerprint, err := loadReport(cfg.DataPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sections := []func() error{
		func() error { return report.RenderSummary(out, r) },
		func() error { return report.RenderEquations(out, r) },
		func() error { return report.RenderAccuracy(out, r) },
		func() error { return report.RenderSamples(out, r, regression.KindLinear) },
		func() error { return report.RenderSamples(out, r, regression.KindQuadratic) },
	}
	if fitPlot {
		sections = append(sections,
			func() error { return report.RenderFitPlot(out, r, regression.KindLinear, 0, 0, false) },
			func() error { return report.RenderFitPlot(out, r, regression.KindQuadratic, 0, 0, false) },
		)
	}
	for _, render := range sections {
		if err := render(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if fitNoSave {
		return nil
	}
	return recordFit(cmd.Context(), r, cfg.DataPath, fingerprint)
}

func recordFit(ctx context.Context, r report.Report, path string, fingerprint uint64) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	prev, found, err := st.LatestByFingerprint(ctx, fingerprint)
	if err != nil {
		logErrf("failed to look up previous fit: %v\n", err)
	} else if found {
		logErrf("Dataset unchanged since fit #%d (%s)\n", prev.ID, prev.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	rec := r.Record(path, fingerprint)
	rec.CreatedAt = time.Now()
	id, err := st.InsertFit(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to record fit: %w", err)
	}
	logErrf("Recorded fit #%d\n", id)
	return nil
}

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict temperature at one RH value",
		Args:  cobra.NoArgs,
		RunE:  runPredictCmd,
	}
	cmd.Flags().Float64Var(&predictHumidity, "rh", model.DefaultHumidity, "relative humidity in percent (0-100)")
	return cmd
}

func runPredictCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("rh") {
		predictHumidity = cfg.Humidity
	}
	if err := validateHumidity("--rh", predictHumidity); err != nil {
		return err
	}
	r, _, err := loadReport(cfg.DataPath)
	if err != nil {
		return err
	}
	if err := report.RenderPrediction(cmd.OutOrStdout(), r.Predict(predictHumidity)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newResidualsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "residuals",
		Short: "Show residual statistics and error distribution",
		Args:  cobra.NoArgs,
		RunE:  runResidualsCmd,
	}
	cmd.Flags().StringVar(&residualsModel, "model", regression.KindLinear.String(), "model: linear or quadratic")
	cmd.Flags().IntVar(&residualsBins, "bins", regression.DefaultBins, "histogram bins")
	cmd.Flags().BoolVar(&residualsPlot, "plot", false, "include a residual plot")
	return cmd
}

func runResidualsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("bins") {
		residualsBins = cfg.Bins
	}

	kind, err := regression.ParseKind(residualsModel)
	if err != nil {
		return fmt.Errorf("--model must be linear or quadratic")
	}
	if residualsBins < 1 {
		return fmt.Errorf("--bins must be >= 1")
	}
	r, _, err := loadReport(cfg.DataPath)
	if err != nil {
		return err
	}
	stats, err := r.ResidualStats(kind, residualsBins)
	if err != nil {
		return fmt.Errorf("failed to analyse residuals: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := report.RenderResidualStats(out, kind, stats); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.RenderDistribution(out, stats); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if residualsPlot {
		if err := report.RenderResidualPlot(out, r, kind, 0, 0, false); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export predictions to CSV",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "output path (default: export dir + dated file name)")
	cmd.Flags().BoolVar(&exportGzip, "gzip", false, "gzip-compress the export")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, _, err := loadReport(cfg.DataPath)
	if err != nil {
		return err
	}
	now := time.Now()
	path := resolveExportPath(exportOut, cfg.ExportDir, exportGzip, now)
	if err := export.WriteFile(path, r, now, exportGzip); err != nil {
		return err
	}
	logErrln("Wrote", path)
	return nil
}

func resolveExportPath(out, dir string, compress bool, now time.Time) string {
	path := strings.TrimSpace(out)
	if path == "" {
		path = filepath.Join(dir, export.DefaultFileName(now))
	}
	if compress && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
	}
	return path
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded fits",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N fits")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	hcfg := model.HistoryConfig{Last: historyLast}
	if cmd.Flags().Changed("data") {
		hcfg.DataPath = dataPath
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	records, err := st.ListFits(ctx, hcfg)
	if err != nil {
		return fmt.Errorf("failed to list fits: %w", err)
	}
	if err := report.RenderHistory(cmd.OutOrStdout(), records); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func loadReport(path string) (report.Report, uint64, error) {
	samples, err := dataset.Load(path)
	if err != nil {
		return report.Report{}, 0, fmt.Errorf("failed to load dataset: %w", err)
	}
	r, err := report.Build(samples)
	if err != nil {
		return report.Report{}, 0, explainFitError(err)
	}
	return r, dataset.Fingerprint(samples), nil
}

func explainFitError(err error) error {
	switch {
	case errors.Is(err, regression.ErrSingularMatrix):
		return fmt.Errorf("%w\nhint: the quadratic fit needs at least 3 distinct humidity values", err)
	case errors.Is(err, regression.ErrDegenerateInput):
		return fmt.Errorf("%w\nhint: the dataset needs varying humidity and temperature values", err)
	default:
		return err
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# humtemp configuration
# Uncomment a value to enable it. CLI flags override config values.

[dashboard]
# data = %q         # Dataset CSV (date,humidity,temperature)
# bins = %d               # Histogram bins for residuals
# rh = %.1f               # Initial RH for the prediction slider (0-100)

[export]
# dir = "."               # Directory for dashboard and CLI exports
# gzip = false            # Gzip-compress exports
`,
		model.DefaultDataPath,
		regression.DefaultBins,
		model.DefaultHumidity,
	)
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.DataPath) == "" {
		return fmt.Errorf("--data must not be empty")
	}
	if cfg.Bins < 1 {
		return fmt.Errorf("--bins must be >= 1")
	}
	return validateHumidity("--rh", cfg.Humidity)
}

func validateHumidity(flag string, rh float64) error {
	if math.IsNaN(rh) || rh < model.MinHumidity || rh > model.MaxHumidity {
		return fmt.Errorf("%s must be between %g and %g", flag, model.MinHumidity, model.MaxHumidity)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
