package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"squadload/internal/config"
	"squadload/internal/logging"
	"squadload/internal/metrics"
	"squadload/internal/service"
	"squadload/internal/store"
)

var (
	configPath string
	dbPath     string
)

// rootCmd opens the terminal dashboard when no subcommand is given
var rootCmd = &cobra.Command{
	Use:   "squadload",
	Short: "Training load and injury-risk monitoring for a squad",
	Long: `squadload stores athletes' daily wellness check-ins and post-session load
check-outs, and turns them into ACWR, wellness classification and a
combined risk ranking for staff.

Run without a subcommand to open the terminal dashboard.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.squadload/config.json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file, overrides storage.db_path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env holds everything a command needs, built in dependency order
type env struct {
	cfg      *config.Config
	store    *store.Store
	registry *prometheus.Registry
	metrics  *metrics.Manager
	ingest   *service.IngestService
	query    *service.QueryService
}

// setup loads the config, configures logging and opens the store. The
// terminal UI owns stdout, so it logs to the file only.
func setup(logToStdout bool) (*env, error) {
	if configPath != "" {
		config.SetPath(configPath)
	}

	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Fprintf(os.Stderr, "No config file found, wrote defaults to %s/config.json\n", configDir)
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logFile, err := cfg.LogFilePath()
	if err != nil {
		return nil, err
	}
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   logFile,
		LogToStdout:   logToStdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})

	path := cfg.Storage.DBPath
	if dbPath != "" {
		path = dbPath
	}
	var db *store.Store
	if path == "" {
		db, err = store.Open()
	} else {
		db, err = store.OpenPath(path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewManager("squadload", "engine", registry)

	logrus.WithFields(logrus.Fields{
		"team":   cfg.Team.Name,
		"weight": cfg.Weight(),
	}).Debug("squadload starting")

	return &env{
		cfg:      cfg,
		store:    db,
		registry: registry,
		metrics:  m,
		ingest:   service.NewIngestService(db, m),
		query:    service.NewQueryService(db, m, cfg),
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		logrus.Errorf("closing database: %s", err)
	}
}
