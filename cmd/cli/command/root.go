package command

// root.go defines the root command of the yatube admin tool and the
// configuration every subcommand shares.

import (
	"context"
	"fmt"
	"os"

	"yatube/database"
	"yatube/internal/config"
	"yatube/internal/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	logLevel string // overrides LOG_LEVEL

	appConfig *config.Config
	appLogger *zap.Logger
)

var (
	success = color.New(color.FgGreen).SprintFunc()
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yatube",
	Short: "yatube - blog platform server and admin tool",
	Long: `yatube runs the Yatube blog site and manages its data:
- Serve the web site
- Apply database migrations
- Manage groups and user accounts
- Fill a development database with fake posts
- Clear the page cache

Settings come from the environment or a .env file in the working directory.
Use "yatube command --help" to see the options of a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		log, err := logger.NewLogger(cfg.GoEnv, cfg.LogLevel)
		if err != nil {
			return err
		}

		appConfig, appLogger = cfg, log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger != nil {
			_ = appLogger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openDatabase connects to the configured database and brings its schema up to date.
func openDatabase() (*gorm.DB, func(), error) {
	db, err := database.Connect(appConfig, appLogger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := database.Close(db); err != nil {
			appLogger.Warn("Failed to close database", zap.Error(err))
		}
	}
	if err := database.Migrate(db, appLogger); err != nil {
		closeDB()
		return nil, nil, err
	}
	return db, closeDB, nil
}
