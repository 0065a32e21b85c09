package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/autocloner"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/cloner"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/config"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/db"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/export"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/pkg/logging"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/source"
)

var (
	ConfigFile = "config.yaml"
	Quiet      bool
	Verbose    bool

	Query        string
	MinStars     int
	Languages    []string
	DateRange    string
	MaxResults   int
	MinRelevance float64
	CloneDir     string
	MaxClone     int
	SortBy       string
	ExportFormat = string(export.JSON)
	OutputFile   string
	SearchOnly   bool
	LedgerFile   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&ConfigFile, "config", "c", ConfigFile, "Path to configuration YAML (or .toml) file")
	rootCmd.PersistentFlags().BoolVarP(&Quiet, "quiet", "", false, "Activate quiet log output")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Activate verbose log output")
	rootCmd.PersistentFlags().StringVarP(&LedgerFile, "ledger", "", "", "Path to bolt run ledger file (overrides config file)")

	bindPipelineFlags(rootCmd)

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(scoreCmd)
}

// bindPipelineFlags registers the search, clone and export flags on cmd,
// resetting their variables to the defaults.
func bindPipelineFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&Query, "query", "q", "", "GitHub search query (overrides config file)")
	flags.IntVarP(&MinStars, "min-stars", "", 0, "Minimum stars filter (overrides config file)")
	flags.StringSliceVarP(&Languages, "languages", "", nil, "Comma-separated language filter (overrides config file)")
	flags.StringVarP(&DateRange, "date-range", "", "", "Repository activity window: week, month, quarter or year (overrides config file)")
	flags.IntVarP(&MaxResults, "max-results", "", 0, "Maximum number of search results to process (overrides config file)")
	flags.Float64VarP(&MinRelevance, "min-relevance", "", 0, "Minimum industry relevance score, 0.0-1.0 (overrides config file)")
	flags.StringVarP(&CloneDir, "clone-dir", "", "", "Directory to clone repositories into (overrides config file)")
	flags.IntVarP(&MaxClone, "max-clone", "", 0, "Maximum number of repositories to clone (overrides config file)")
	flags.StringVarP(&SortBy, "sort-by", "", "", "Clone selection order: stars or industry_relevance (overrides config file)")
	flags.StringVarP(&ExportFormat, "export-format", "", string(export.JSON), "Export format for results: json or csv")
	flags.StringVarP(&OutputFile, "output-file", "", "", "Output filename for export (overrides config file)")
	flags.BoolVarP(&SearchOnly, "search-only", "", false, "Only search repositories, don't clone them")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "repo-cloner",
	Short: "Find, filter, score and clone relevant GitHub repositories",
	Long:  "Searches GitHub for repositories, scores them against industry keywords, clones the best matches and exports the results",
	Args:  cobra.NoArgs,
	PreRun: func(_ *cobra.Command, _ []string) {
		initLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		initLoggingFrom(cfg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go handleSignals(cancel)

		err := execute(ctx, cmd, cfg)
		if err != nil {
			log.Errorf("main: %s", config.RedactError(err, cfg.Token()))
		}
		if code := exitCode(err); code != 0 {
			os.Exit(code)
		}
	},
}

// newLiveSource builds the live search backend for a GitHub token.
var newLiveSource = func(token string) source.LiveSource {
	return source.NewGitHubSource(token)
}

// execute overlays flags onto cfg and runs the pipeline.  An empty search is
// not an error.
func execute(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}
	return runPipeline(ctx, cfg, opts)
}

// exitCode maps the outcome of execute to the process exit status.
func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

func runPipeline(ctx context.Context, cfg *config.Config, opts autocloner.Options) error {
	redact := func(s string) string {
		return config.Redact(s, cfg.Token())
	}

	var live source.LiveSource
	if token := cfg.Token(); token != "" {
		live = newLiveSource(token)
	}
	chain := source.NewChain(live)
	chain.Redact = redact

	cl := cloner.New(&cloner.Config{
		Directory: cfg.Clone.Directory,
		Max:       cfg.Clone.MaxRepositories,
	}, nil)
	cl.Redact = redact

	ac := &autocloner.AutoCloner{
		Chain:    chain,
		Cloner:   cl,
		Exporter: export.NewExporter(),
		Log:      log.WithField("component", "autocloner"),
	}

	run := func() error {
		out, err := ac.Run(ctx, opts)
		if err != nil {
			return err
		}
		if out.NoResults() {
			log.Info("No repositories matched, nothing to clone or export")
			return nil
		}
		log.WithField("found", len(out.Candidates)).WithField("export", out.ExportFile).Info("Done")
		return nil
	}

	if cfg.Ledger.File == "" {
		return run()
	}
	return db.WithClient(db.NewBoltConfig(cfg.Ledger.File), func(client *db.Client) error {
		ac.Ledger = client
		return run()
	})
}

func pipelineOptions(cfg *config.Config) (autocloner.Options, error) {
	format, err := export.ParseFormat(ExportFormat)
	if err != nil {
		return autocloner.Options{}, err
	}

	outputFile := OutputFile
	if outputFile == "" {
		switch format {
		case export.JSON:
			outputFile = cfg.Export.JSONFile
		case export.CSV:
			outputFile = cfg.Export.CSVFile
		}
	}

	opts := autocloner.Options{
		Query: source.Query{
			Text:       cfg.Search.Query,
			Languages:  cfg.Search.Languages,
			MinStars:   cfg.Search.MinStars,
			DateRange:  cfg.Search.DateRange,
			MaxResults: cfg.Search.MaxResults,
		},
		Keywords:     cfg.Keywords(),
		MinRelevance: cfg.Search.MinIndustryRelevance,
		SortKey:      cfg.SortKey(),
		MaxClone:     cfg.Clone.MaxRepositories,
		SearchOnly:   SearchOnly,
		ExportFormat: format,
		OutputFile:   outputFile,
	}
	return opts, nil
}

// applyFlags overlays explicitly set command-line flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("query") {
		cfg.Search.Query = Query
	}
	if flags.Changed("min-stars") {
		cfg.Search.MinStars = MinStars
	}
	if flags.Changed("languages") {
		cfg.Search.Languages = Languages
	}
	if flags.Changed("date-range") {
		cfg.Search.DateRange = DateRange
	}
	if flags.Changed("max-results") {
		cfg.Search.MaxResults = MaxResults
	}
	if flags.Changed("min-relevance") {
		cfg.Search.MinIndustryRelevance = MinRelevance
	}
	if flags.Changed("clone-dir") {
		cfg.Clone.Directory = CloneDir
	}
	if flags.Changed("max-clone") {
		cfg.Clone.MaxRepositories = MaxClone
	}
	if flags.Changed("sort-by") {
		cfg.Clone.SortBy = SortBy
	}
	if flags.Changed("ledger") {
		cfg.Ledger.File = LedgerFile
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(ConfigFile)
	if err != nil {
		log.Fatalf("main: %s", err)
	}
	return cfg
}

func handleSignals(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	log.WithField("sig", s).Info("Operation interrupted by user")
	cancel()
	// A second signal aborts immediately.
	<-sigCh
	os.Exit(1)
}

func initLogging() {
	logging.Init(logging.Options{
		Verbose: Verbose,
		Quiet:   Quiet,
	})
}

// initLoggingFrom re-applies logging with the configured level and format;
// command-line verbosity still wins.
func initLoggingFrom(cfg *config.Config) {
	logging.Init(logging.Options{
		Verbose: Verbose,
		Quiet:   Quiet,
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
	})
}
