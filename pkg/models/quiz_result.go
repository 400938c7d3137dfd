package models

import "time"

// QuizResult is the log row written for every submitted quiz
type QuizResult struct {
	ID               int64     `json:"id" db:"id"`
	StudentID        int64     `json:"student_id" db:"student_id"`
	TopicID          int64     `json:"topic_id" db:"topic_id"`
	DateCreated      time.Time `json:"date_created" db:"date_created"`
	CorrectAnswers   int       `json:"correct_answers" db:"correct_answers"`
	IncorrectAnswers int       `json:"incorrect_answers" db:"incorrect_answers"`
	Points           int       `json:"points" db:"points"`
}
