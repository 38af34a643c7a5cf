package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/cmd/cli/commands"
	"github.com/kiddos/scheduler/internal/config"
	"github.com/kiddos/scheduler/pkg/clients/sheetsclient"
	"github.com/kiddos/scheduler/pkg/core/services"
	"github.com/kiddos/scheduler/pkg/metrics"
	"github.com/kiddos/scheduler/pkg/postgres"
	"github.com/kiddos/scheduler/pkg/solver/glpksolver"
	"github.com/kiddos/scheduler/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	logsDir string
	app     = &commands.AppContext{}
	pool    *postgres.DB
	stop    context.CancelFunc
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Shift scheduler - build monthly staff rosters",
		Long: `A CLI tool for collecting shift and day-off requests, optimizing monthly
rosters under labour constraints, and publishing them to Google Sheets.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdown()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.PersistentFlags().StringVar(&logsDir, "logs-dir", "logs", "Directory for JSON log files")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.DefinePeriodCmd(app))
	rootCmd.AddCommand(commands.SetRequestCmd(app))
	rootCmd.AddCommand(commands.SetRequirementCmd(app))
	rootCmd.AddCommand(commands.SetLeaderCmd(app))
	rootCmd.AddCommand(commands.ViewRequestsCmd(app))
	rootCmd.AddCommand(commands.OptimizeCmd(app))
	rootCmd.AddCommand(commands.OptimizeStatusCmd(app))
	rootCmd.AddCommand(commands.ViewRosterCmd(app))
	rootCmd.AddCommand(commands.PublishRosterCmd(app))
	rootCmd.AddCommand(commands.ExportRosterCmd(app))
	rootCmd.AddCommand(commands.ListStaffCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		shutdown()
		os.Exit(1)
	}
}

// initApp sets up logger, config, clients, database and solver
func initApp() error {
	var err error

	// Environment variables such as DATABASE_URL may come from .env
	_ = godotenv.Load()

	app.Ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Initialize logger
	app.Logger, err = logging.InitLogger(env, logging.Options{Dir: logsDir, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	// Initialize sheets client
	app.Logger.Info("Initializing sheets client")
	app.SheetsClient, err = sheetsclient.NewClient(app.Ctx, app.Cfg.CredentialsFile, env)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.Logger.Debug("Sheets client initialized successfully")

	// Connect to database
	databaseURL, err := app.Cfg.ResolveDatabaseURL()
	if err != nil {
		return err
	}
	app.Logger.Info("Connecting to database")
	pool, err = postgres.NewDB(app.Ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	app.Logger.Info("Running migrations")
	if err := pool.RunMigrations(app.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Database = pool
	app.Logger.Info("Database initialized successfully")

	app.Backend = glpksolver.New()
	app.Metrics = metrics.NewRecorder()
	app.Runner = services.NewRunner(app.Logger)
	app.Logger.Debug("Solver initialized", zap.String("backend", app.Backend.Name()))

	return nil
}

// shutdown waits for background runs, then releases the database and logger
func shutdown() {
	if app.Runner != nil {
		app.Runner.Wait()
	}
	if pool != nil {
		pool.Close()
		pool = nil
	}
	if stop != nil {
		stop()
	}
	if app.Logger != nil {
		app.Logger.Sync()
	}
}
