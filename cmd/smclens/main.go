package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"smclens/internal/config"
	"smclens/internal/engine"
	"smclens/internal/logging"
	"smclens/internal/metrics"
	"smclens/internal/provider"
	"smclens/internal/ratelimit"
	"smclens/internal/report"
	"smclens/internal/scanner"
	"smclens/internal/symbols"
	"smclens/pkg/model"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

var (
	cfgFile     string
	format      string
	candleFile  string
	symbol      string
	timeframe   string
	account     float64
	symbolList  string
	dataDirs    []string
	workers     int
	metricsFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smclens",
		Short: "Smart-money market structure analysis and signal scoring",
		Long: `smclens reads OHLCV candles and reports swing structure, breaks of
structure, changes of character, order blocks, fair value gaps and
liquidity, a seven-factor confluence score, a trade signal and a
position size.

Examples:
  smclens analyze --file data/BTCUSDT_1h.csv
  smclens scan --symbols BTCUSDT,ETHUSDT --timeframe 4h --dir data`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "smclens.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "output format: table, json")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one candle file",
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringVar(&candleFile, "file", "", "candle file (.json or .csv)")
	analyzeCmd.Flags().StringVar(&symbol, "symbol", "", "symbol label (default: from the file name)")
	analyzeCmd.Flags().StringVar(&timeframe, "timeframe", "", "timeframe label (default: from the file name)")
	analyzeCmd.Flags().Float64Var(&account, "account", 0, "account size for position sizing")
	_ = analyzeCmd.MarkFlagRequired("file")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Analyze many symbols in parallel",
		RunE:  runScan,
	}
	scanCmd.Flags().StringVar(&symbolList, "symbols", "", "comma-separated list of symbols (default: every file for the timeframe)")
	scanCmd.Flags().StringVar(&timeframe, "timeframe", "1h", "timeframe to load")
	scanCmd.Flags().StringSliceVar(&dataDirs, "dir", nil, "candle directory, repeat for fallbacks (default: scanner.data_dir)")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "number of parallel workers (default: scanner.workers)")
	scanCmd.Flags().Float64Var(&account, "account", 0, "account size for position sizing")
	scanCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "smclens %s\n", version)
		},
	}

	rootCmd.AddCommand(analyzeCmd, scanCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading config: %w", err)
	}

	// Override config with CLI flags
	if cmd.Flags().Changed("account") {
		cfg.Risk.AccountSize = account
	}
	if cmd.Flags().Changed("workers") {
		cfg.Scanner.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid config: %w", err)
	}
	if format != "table" && format != "json" {
		return nil, zerolog.Nop(), fmt.Errorf("unknown format %q: want table or json", format)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	candles, err := provider.ReadFile(candleFile)
	if err != nil {
		return fmt.Errorf("reading candles: %w", err)
	}

	meta := metadataFromFile(candleFile)
	if symbol != "" {
		meta.Symbol = symbol
	}
	if timeframe != "" {
		meta.Timeframe = timeframe
	}

	eng := engine.New(cfg.EngineConfig(), engine.WithLogger(logger))
	result, err := eng.Analyze(candles, meta)
	if err != nil {
		return err
	}

	if format == "json" {
		return report.JSON(os.Stdout, result)
	}
	return report.Analysis(os.Stdout, result)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dirs := dataDirs
	if len(dirs) == 0 {
		dirs = []string{cfg.Scanner.DataDir}
	}

	// Load instruments
	loader := symbols.NewLoader(dirs...)
	var instruments []model.Instrument
	if symbolList != "" {
		syms, err := symbols.Parse(symbolList)
		if err != nil {
			return err
		}
		instruments = loader.LoadSymbols(syms, timeframe)
	} else {
		instruments, err = loader.Discover(timeframe)
		if err != nil {
			return fmt.Errorf("discovering symbols: %w", err)
		}
	}
	if len(instruments) == 0 {
		return fmt.Errorf("no symbols to scan")
	}

	p, err := createProvider(cfg, dirs, len(instruments), logger)
	if err != nil {
		return err
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted. Stopping scan...")
			cancel()
		case <-ctx.Done():
		}
	}()

	reg := metrics.NewRegistry()
	eng := engine.New(cfg.EngineConfig(), engine.WithLogger(logger), engine.WithRecorder(reg))

	s := scanner.NewScanner(p, eng, cfg.Scanner.Workers, cfg.Scanner.Timeout)
	s.SetLogger(logger)
	s.SetRecorder(reg)

	bar := progressbar.NewOptions(len(instruments),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	s.SetProgressCallback(func(scanned, total int) {
		_ = bar.Set(scanned)
	})

	rep, err := s.Scan(ctx, instruments)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if metricsFile != "" {
		if err := reg.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}

	if format == "json" {
		return report.JSON(os.Stdout, rep)
	}
	return report.Scan(os.Stdout, rep)
}

// createProvider chains one file provider per data directory, throttled
// when loads_per_minute is set; repeated symbols are loaded once
func createProvider(cfg *config.Config, dirs []string, jobs int, logger zerolog.Logger) (provider.Provider, error) {
	var providers []provider.Provider
	for _, dir := range dirs {
		providers = append(providers, provider.NewFileProvider(dir))
	}

	fallback := provider.NewFallbackProvider(providers...)
	if !fallback.IsAvailable() {
		return nil, fmt.Errorf("no data directory found in %s", strings.Join(dirs, ", "))
	}

	var p provider.Provider = fallback
	if cfg.Scanner.LoadsPerMinute > 0 {
		limiter := ratelimit.NewLimiter("file", cfg.Scanner.LoadsPerMinute)
		logger.Debug().Stringer("limiter", limiter).Msg("throttling candle loads")
		p = provider.NewThrottledProvider(p, limiter)
	}
	return provider.NewCachingProvider(p, jobs), nil
}

// metadataFromFile labels data/BTCUSDT_1h.csv as BTCUSDT 1h
func metadataFromFile(path string) model.Metadata {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sym, tf, _ := strings.Cut(base, "_")
	return model.Metadata{Symbol: strings.ToUpper(sym), Timeframe: tf}
}
