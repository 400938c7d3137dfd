package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/wordquiz/internal/config"
	"github.com/example/wordquiz/internal/database"
	"github.com/example/wordquiz/internal/quiz"
)

var rootCmd = &cobra.Command{
	Use:           "wordquiz",
	Short:         "Spaced repetition vocabulary quizzes",
	Long:          "wordquiz serves multiple-choice vocabulary quizzes over HTTP and Telegram and schedules each word's next review.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line with ctx cancelled on shutdown signals
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db-type", "", "Database type: sqlite or postgres (overrides DB_TYPE)")
	rootCmd.PersistentFlags().String("dsn", "", "Database DSN (overrides DB_DSN)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(generateResultsCmd)
	rootCmd.AddCommand(createUserCmd)
}

// loadConfig reads the environment and applies --db-type and --dsn on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if t, _ := cmd.Flags().GetString("db-type"); t != "" {
		cfg.DBType = t
	}
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		cfg.DBDSN = dsn
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

// setup loads config and opens the database shared by every subcommand
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, *sqlx.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.Connect(cmd.Context(), cfg.DBType, cfg.DBDSN)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to connect to database")
	}
	logger.Info("database ready", "type", cfg.DBType)
	return cfg, logger, db, nil
}

func newQuizService(db *sqlx.DB, cfg *config.Config, logger *slog.Logger) *quiz.Service {
	return quiz.NewService(database.NewQuizStore(db), quiz.Config{
		MaxQuizLength:    cfg.MaxQuizLength,
		CorrectAnswerPts: cfg.CorrectAnswerPts,
		OriginIcon:       cfg.OriginIcon,
		TargetIcon:       cfg.TargetIcon,
	}, quiz.WithLogger(logger))
}
