package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tu613/vet-learning-app/internal/config"
	"github.com/tu613/vet-learning-app/internal/llm"
	"github.com/tu613/vet-learning-app/internal/logger"
	"github.com/tu613/vet-learning-app/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "vetlearn",
	Short: "Veterinary history-taking practice",
	Long:  "vetlearn: interview a simulated pet owner in the terminal and get AI feedback on your history taking.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite file path (overrides VETLEARN_DB)")
	rootCmd.PersistentFlags().String("secrets", "", "Path to secrets.yaml (default ./secrets.yaml or $XDG_CONFIG_HOME/vetlearn/secrets.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file to load before reading configuration")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(rehearseCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// env is the configuration and open resources shared by every command.
type env struct {
	secrets *config.Secrets
	cfg     config.Config
	log     *logger.Logger
	store   *store.Store
}

// openEnv loads .env and the secrets file, builds the logger, and opens
// the store.
func openEnv(cmd *cobra.Command) (*env, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	secretsPath, _ := cmd.Flags().GetString("secrets")
	if secretsPath == "" {
		secretsPath = config.DefaultSecretsPath()
	}
	secrets, err := config.LoadSecrets(secretsPath)
	if err != nil {
		return nil, err
	}
	cfg := config.Load(secrets)

	log, err := logger.New(cfg.Log.Mode, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dsn, err := resolveDSN(cmd, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", "driver", cfg.Database.Driver)

	return &env{secrets: secrets, cfg: cfg, log: log, store: st}, nil
}

func (e *env) Close() {
	e.store.Close()
	e.log.Sync()
}

// resolveDSN returns the database DSN using the --db flag (highest
// priority), then the configured DSN, then the default SQLite path.
func resolveDSN(cmd *cobra.Command, db config.DatabaseConfig) (string, error) {
	dsn, _ := cmd.Flags().GetString("db")
	if dsn == "" {
		dsn = db.DSN
	}
	isSQLite := db.Driver == "" || db.Driver == store.DriverSQLite
	if dsn == "" {
		if !isSQLite {
			return "", fmt.Errorf("%w: database.dsn is required for the %s driver", config.ErrMissingSecret, db.Driver)
		}
		return store.DefaultDBPath()
	}
	if isSQLite {
		return dsn, store.EnsureDir(dsn)
	}
	return dsn, nil
}

// newProvider builds the configured text-generation provider with request
// logging into the store. A missing API key is fatal.
func (e *env) newProvider(ctx context.Context) (*llm.LoggingProvider, llm.Config, error) {
	cfg := llm.ConfigFromSecrets(e.secrets)
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}
	p, err := llm.NewProvider(ctx, cfg, e.store.EventRepo(), e.log)
	if err != nil {
		return nil, cfg, err
	}
	e.log.Info("LLM provider ready", "provider", cfg.Provider, "model", cfg.Model())
	return p, cfg, nil
}
