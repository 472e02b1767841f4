// Package cmd implements the catalogctl commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datacatalog/internal/config"
	"datacatalog/internal/infrastructure/storage/postgres"
	"datacatalog/pkg/logger"
)

var (
	logLevel string
	dbConfig *config.DatabaseConfig
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Data catalog administration",
	Long: `catalogctl manages the data catalog database: schema migrations, demo
seed data and user accounts. Connection settings are read from DATABASE_URL,
a .env file or config.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.New(logger.Config{Level: logLevel, Development: true})
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		cmd.SetContext(logger.WithLogger(cmd.Context(), log.WithComponent("catalogctl")))

		dbConfig, err = config.LoadDatabase()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(usersCmd)
}

// openDatabase connects with a small pool; the CLI runs one statement at a time.
func openDatabase(ctx context.Context) (*postgres.Pool, *postgres.TxManager, error) {
	poolCfg := postgres.DefaultPoolConfig(dbConfig.DSN)
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 0

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	txOpts := postgres.DefaultTxOptions()
	txOpts.StatementTimeout = dbConfig.StatementTimeout
	return pool, postgres.NewTxManager(pool, txOpts), nil
}
