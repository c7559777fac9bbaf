package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/seo-optimizer/metasight/analyzer"
	"github.com/seo-optimizer/metasight/config"
	"github.com/seo-optimizer/metasight/fetcher"
	"github.com/seo-optimizer/metasight/logging"
	"github.com/seo-optimizer/metasight/metrics"
	"github.com/seo-optimizer/metasight/server"
	"github.com/seo-optimizer/metasight/stats"
)

// retainMonths is how many months of analysis counters serve keeps
const retainMonths = 12

var (
	configPath string
	verbose    bool
	jsonOutput bool
	baseURL    string
)

func main() {
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:   "metasight",
		Short: "Extract and review the SEO metadata of web pages",
		Long: `metasight fetches a page, extracts its title, meta description, keywords,
Open Graph and Twitter tags, headings, images and links, and reports how the
page would appear in search results and social cards.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Fetch a page and print its SEO report",
		Example: `  metasight analyze example.com
  metasight analyze https://example.com/blog --json`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the analysis as JSON")

	extractCmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract the SEO report from HTML on disk or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExtract,
	}
	extractCmd.Flags().StringVar(&baseURL, "base-url", "", "Absolute URL the HTML was served from")
	extractCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the analysis as JSON")
	_ = extractCmd.MarkFlagRequired("base-url")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Analyze URLs read line by line from stdin, printing only the latest result",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	watchCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print analyses as JSON")

	rootCmd.AddCommand(serveCmd, analyzeCmd, extractCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// cliLogger keeps stdout clean for reports; logs go to stderr when verbose
func cliLogger(cfg config.Config) *logrus.Logger {
	if !verbose {
		return logging.Discard()
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	storage, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize stats storage: %w", err)
	}
	if removed := storage.Cleanup(retainMonths); len(removed) > 0 {
		logger.WithField("months", removed).Info("Removed expired monthly statistics")
	}

	statistics, err := logging.NewStatistics(filepath.Join(cfg.DataDir, "statistics.json"), cfg.DevMode)
	if err != nil {
		logger.WithError(err).Warn("Starting with empty request statistics")
	}

	m := metrics.New("metasight")
	a := analyzer.New(fetcher.New(cfg.FetchOptions()),
		analyzer.WithStats(storage),
		analyzer.WithMetrics(m),
		analyzer.WithLogger(logger),
	)

	logger.WithFields(logrus.Fields{
		"port":       cfg.Port,
		"mode":       cfg.GinMode,
		"direct":     cfg.Fetch.Direct,
		"rate_limit": cfg.RateLimit.RequestsPerSecond,
		"burst":      cfg.RateLimit.Burst,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, a, statistics, m, logger).Run(ctx)
}

func newCLIAnalyzer() (*analyzer.Analyzer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return analyzer.New(fetcher.New(cfg.FetchOptions()), analyzer.WithLogger(cliLogger(cfg))), nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newCLIAnalyzer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analysis, err := a.Analyze(ctx, args[0])
	if err != nil {
		return fmt.Errorf("%s", fetcher.UserMessage(err))
	}
	return printAnalysis(cmd.OutOrStdout(), analysis, jsonOutput)
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, err := newCLIAnalyzer()
	if err != nil {
		return err
	}

	source := "-"
	if len(args) == 1 {
		source = args[0]
	}
	html, err := readSource(cmd.InOrStdin(), source)
	if err != nil {
		return err
	}

	return printAnalysis(cmd.OutOrStdout(), a.AnalyzeHTML(html, baseURL), jsonOutput)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newCLIAnalyzer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watch(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), a.Analyze, jsonOutput)
}
