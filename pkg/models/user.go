package models

import "time"

// Roles a user can hold
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User is an account of a student or a teacher
type User struct {
	ID                  int64     `json:"id" db:"id"`
	Username            string    `json:"username" db:"username"`
	PasswordHash        string    `json:"-" db:"password_hash"`
	FirstName           string    `json:"first_name" db:"first_name"`
	LastName            string    `json:"last_name" db:"last_name"`
	Role                string    `json:"role" db:"role"`
	Streak              int       `json:"streak" db:"streak"`
	TelegramID          *int64    `json:"telegram_id,omitempty" db:"telegram_id"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // Hour of day for reminders (0-23)
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// IsTeacher reports whether the user manages content rather than studying it
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}
