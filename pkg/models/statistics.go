package models

// DashboardStats summarises a student's progress
type DashboardStats struct {
	WordsDueRevision int `json:"words_due_revision"`
	WordsMastered    int `json:"words_mastered"`
	QuizzesTaken     int `json:"quizzes_taken" db:"quizzes_taken"`
	TotalPoints      int `json:"total_points" db:"total_points"`
	Streak           int `json:"streak"`
}
