package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/wordquiz/pkg/models"
)

const userSelect = `
	SELECT id, username, password_hash, first_name, last_name, role, streak,
		telegram_id, notification_enabled, notification_hour, created_at
	FROM users`

// UserRepository handles database operations for users
type UserRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.get(ctx, userSelect+" WHERE id = ?", id)
}

// GetByUsername retrieves a user by login name
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.get(ctx, userSelect+" WHERE username = ?", username)
}

// GetByTelegramID retrieves the user linked to a Telegram account
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return r.get(ctx, userSelect+" WHERE telegram_id = ?", telegramID)
}

func (r *UserRepository) get(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, r.db, &user, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &user, nil
}

// Create inserts a new user and fills in its id
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	query := `
		INSERT INTO users (username, password_hash, first_name, last_name, role, streak,
			telegram_id, notification_enabled, notification_hour)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Role, user.Streak,
		user.TelegramID, user.NotificationEnabled, user.NotificationHour,
	).Scan(&user.ID)
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}
	return nil
}

// ListStudents returns all accounts with the student role
func (r *UserRepository) ListStudents(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := sqlx.SelectContext(ctx, r.db, &users, r.db.Rebind(userSelect+" WHERE role = ? ORDER BY id"), models.RoleStudent)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list students")
	}
	return users, nil
}

// GetStreak returns the stored streak counter without checking whether it is still current
func (r *UserRepository) GetStreak(ctx context.Context, id int64) (int, error) {
	var streak int
	err := sqlx.GetContext(ctx, r.db, &streak, r.db.Rebind("SELECT streak FROM users WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to get streak")
	}
	return streak, nil
}

// IncrementStreak adds one day to the streak in a single statement
func (r *UserRepository) IncrementStreak(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE users SET streak = streak + 1 WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "failed to increment streak")
	}
	return expectAffected(res)
}

// ResetStreak starts a new streak of one day
func (r *UserRepository) ResetStreak(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE users SET streak = 1 WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "failed to reset streak")
	}
	return expectAffected(res)
}

// LinkTelegram attaches a Telegram account to an existing user
func (r *UserRepository) LinkTelegram(ctx context.Context, id, telegramID int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE users SET telegram_id = ? WHERE id = ?"), telegramID, id)
	if err != nil {
		return errors.Wrap(err, "failed to link telegram account")
	}
	return expectAffected(res)
}
