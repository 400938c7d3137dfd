package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/wordquiz/pkg/models"
)

// UpdateNotificationSettings changes when (and whether) a user gets review reminders
func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, id int64, enabled bool, hour int) error {
	if hour < 0 || hour > 23 {
		return errors.Errorf("invalid notification hour %d", hour)
	}
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind("UPDATE users SET notification_enabled = ?, notification_hour = ? WHERE id = ?"),
		enabled, hour, id)
	if err != nil {
		return errors.Wrap(err, "failed to update notification settings")
	}
	return expectAffected(res)
}

// GetUsersForNotification returns users with a linked Telegram account who asked
// for reminders at the given hour
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	query := userSelect + `
		WHERE notification_enabled = ? AND notification_hour = ? AND telegram_id IS NOT NULL
		ORDER BY id`
	users := []models.User{}
	if err := sqlx.SelectContext(ctx, r.db, &users, r.db.Rebind(query), true, hour); err != nil {
		return nil, errors.Wrap(err, "failed to get users for notification")
	}
	return users, nil
}
