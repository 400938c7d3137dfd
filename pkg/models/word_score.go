package models

import "time"

// WordScore is one student's spaced-repetition state for one word
type WordScore struct {
	ID                 int64     `json:"id" db:"id"`
	WordID             int64     `json:"word_id" db:"word_id"`
	StudentID          int64     `json:"student_id" db:"student_id"`
	ConsecutiveCorrect int       `json:"consecutive_correct" db:"consecutive_correct"`
	TimesSeen          int       `json:"times_seen" db:"times_seen"`
	TimesCorrect       int       `json:"times_correct" db:"times_correct"`
	NextReview         time.Time `json:"next_review" db:"next_review"`
}

// ReviewUpdate describes a counted answer for an existing WordScore.
// Counters are applied as increments in storage, NextReview is written as is.
type ReviewUpdate struct {
	ID         int64
	Correct    bool
	NextReview time.Time
}
