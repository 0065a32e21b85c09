package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/config"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/dashboard"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/pkg/logging"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/web"
)

var (
	ConfigFile string
	Quiet      bool
	Verbose    bool

	WebAddr         string
	DatabaseURL     string
	RefreshSchedule string
	DevMode         bool
	MemoryProfiling bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&ConfigFile, "config", "c", "", "Path to configuration YAML (or .toml) file; defaults apply when omitted")
	rootCmd.PersistentFlags().BoolVarP(&Quiet, "quiet", "q", false, "Activate quiet log output")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Activate verbose log output")
	rootCmd.PersistentFlags().StringVarP(&DatabaseURL, "database-url", "", "", "PostgreSQL connection URL (overrides config file and DATABASE_URL)")

	webCmd.Flags().StringVarP(&WebAddr, "addr", "a", "", "Interface bind address:port spec (overrides config file)")
	webCmd.Flags().StringVarP(&RefreshSchedule, "refresh-schedule", "", "", "Dataset refresh cron schedule (overrides config file)")
	webCmd.Flags().BoolVarP(&DevMode, "dev", "", false, "Run the HTTP router in debug mode")
	webCmd.Flags().BoolVarP(&MemoryProfiling, "memory-profiling", "", MemoryProfiling, "Enable the memory profiler; creates a mem.pprof file while the application is shutting down")

	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(newServiceCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "eto-dashboard",
	Short: "Engineer-to-order manufacturing KPI dashboard",
	Long:  "Serves a web dashboard of project, resource, inventory and KPI metrics from PostgreSQL or generated sample data",
	Args:  cobra.NoArgs,
	PreRun: func(_ *cobra.Command, _ []string) {
		initLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Dashboard web server",
	Long:  "Runs the dashboard HTTP server, refreshing its dataset on a cron schedule",
	PreRun: func(_ *cobra.Command, _ []string) {
		initLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if MemoryProfiling {
			p := startMemoryProfiling(".")
			defer func() {
				log.Debug("Stopping memory profiler")
				p.Stop()
			}()
		}

		cfg := loadConfig(cmd)

		d, err := newDaemon(cfg)
		if err != nil {
			log.Fatalf("main: %s", err)
		}
		if err := d.Start(); err != nil {
			log.Fatalf("main: %s", err)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		s := <-sigCh
		log.WithField("sig", s).Info("Received signal, shutting down web service..")
		if err := d.Stop(); err != nil {
			log.Errorf("main: %s", err)
		}
	},
}

// startMemoryProfiling writes mem.pprof into dir once the returned profiler
// is stopped.
func startMemoryProfiling(dir string) interface{ Stop() } {
	log.Debug("Starting memory profiler")
	return profile.Start(profile.MemProfile, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create dashboard tables and seed sample data",
	Long:  "Creates any missing dashboard tables in PostgreSQL and inserts a generated sample dataset when the projects table is empty",
	PreRun: func(_ *cobra.Command, _ []string) {
		initLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		if cfg.Dashboard.DatabaseURL == "" {
			log.Fatalf("main: no database configured (set dashboard.database_url, %v or --database-url)", config.DatabaseURLEnvVar)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		db, err := dashboard.OpenPostgres(ctx, cfg.Dashboard.DatabaseURL)
		if err != nil {
			log.Fatalf("main: %s", config.RedactError(err))
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		store := dashboard.NewStore(db)
		if err := store.CreateTables(); err != nil {
			log.Fatalf("main: %s", err)
		}
		seeded, err := store.Seed(ctx, rand.New(rand.NewSource(time.Now().UnixNano())))
		if err != nil {
			log.Fatalf("main: %s", err)
		}
		log.WithField("seeded", seeded).Info("Database initialized")
	},
}

// daemon couples the dataset refresher with the web service so both the
// foreground command and the system service drive the same lifecycle.
type daemon struct {
	refresher *dashboard.Refresher
	ws        *web.Service
	closeDB   func()
}

func newDaemon(cfg *config.Config) (*daemon, error) {
	d := &daemon{
		closeDB: func() {},
	}

	loader := &dashboard.FallbackLoader{
		Fallback: dashboard.NewSampleLoader(),
	}
	if dsn := cfg.Dashboard.DatabaseURL; dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), dashboard.DefaultConnectTimeout)
		db, err := dashboard.OpenPostgres(ctx, dsn)
		cancel()
		if err != nil {
			log.Warnf("Database unavailable, serving sample data: %s", config.RedactError(err))
		} else {
			loader.Primary = dashboard.NewStore(db)
			d.closeDB = func() {
				if sqlDB, err := db.DB(); err == nil {
					sqlDB.Close()
				}
			}
		}
	}

	d.refresher = dashboard.NewRefresher(dashboard.RefresherConfig{
		Loader:   loader,
		Schedule: cfg.Dashboard.Refresh,
	})

	webCfg := web.NewConfig()
	if cfg.Dashboard.Addr != "" {
		webCfg.Addr = cfg.Dashboard.Addr
	}
	webCfg.DevMode = DevMode
	d.ws = web.New(d.refresher, webCfg)
	return d, nil
}

func (d *daemon) Start() error {
	if err := d.refresher.Start(); err != nil {
		return err
	}
	if err := d.ws.Start(); err != nil {
		d.refresher.Stop()
		return err
	}
	log.Infof("Web service started on %s", d.ws.Addr())
	return nil
}

func (d *daemon) Stop() error {
	err := d.ws.Stop()
	if rErr := d.refresher.Stop(); rErr != nil && err == nil {
		err = rErr
	}
	d.closeDB()
	return err
}

// loadConfig reads the optional config file and overlays explicitly set
// flags.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := config.LoadOptional(ConfigFile)
	if err != nil {
		log.Fatalf("main: %s", err)
	}
	logging.Init(logging.Options{
		Verbose: Verbose,
		Quiet:   Quiet,
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
	})

	flags := cmd.Flags()
	if flags.Changed("database-url") {
		cfg.Dashboard.DatabaseURL = DatabaseURL
	}
	if flags.Changed("addr") {
		cfg.Dashboard.Addr = WebAddr
	}
	if flags.Changed("refresh-schedule") {
		cfg.Dashboard.Refresh = RefreshSchedule
	}
	return cfg
}

func initLogging() {
	logging.Init(logging.Options{
		Verbose: Verbose,
		Quiet:   Quiet,
	})
}
