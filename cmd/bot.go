package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/wordquiz/internal/bot"
	"github.com/example/wordquiz/internal/scheduler"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot and the review reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, db, err := setup(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		botCfg := bot.DefaultConfig()
		botCfg.AdminUserIDs = cfg.AdminUserIDs
		b, err := bot.New(cfg.TelegramToken, db, newQuizService(db, cfg, logger), botCfg, logger)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if cfg.EnableScheduler {
			sched := scheduler.New(db, b, scheduler.Config{
				StartHour: cfg.NotificationStartHour,
				EndHour:   cfg.NotificationEndHour,
			}, logger)
			if err := sched.Start(ctx); err != nil {
				return err
			}
			defer sched.Stop()
			logger.Info("reminder scheduler started",
				"start_hour", cfg.NotificationStartHour, "end_hour", cfg.NotificationEndHour)
		}

		logger.Info("bot started, press Ctrl+C to stop")
		err = b.Start(ctx)
		if errors.Is(err, context.Canceled) {
			// give in-flight updates a moment to finish
			time.Sleep(500 * time.Millisecond)
			logger.Info("bot stopped")
			return nil
		}
		return err
	},
}
