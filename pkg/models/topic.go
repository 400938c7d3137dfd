package models

import "time"

// MinTopicWords is the number of words a topic needs before a quiz can offer four options
const MinTopicWords = 4

// Topic represents a named collection of words
type Topic struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	LongDesc      string    `json:"long_desc" db:"long_desc"`
	ShortDesc     string    `json:"short_desc" db:"short_desc"`
	IsHidden      bool      `json:"is_hidden" db:"is_hidden"`
	AvailableFrom time.Time `json:"available_from" db:"available_from"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	WordCount     int       `json:"word_count" db:"word_count"`
}

// DefaultShortDesc is used when a topic is created without a short description
const DefaultShortDesc = "❓🧠❓"

// IsLive reports whether students can see the topic on the given day.
// WordCount must be populated.
func (t Topic) IsLive(today time.Time) bool {
	return t.WordCount >= MinTopicWords && !t.IsHidden && !t.AvailableFrom.After(today)
}
