package models

import "time"

// Word is a vocabulary pair: an origin-language word and its target-language translation
type Word struct {
	ID        int64     `json:"id" db:"id"`
	Origin    string    `json:"origin" db:"origin"`
	Target    string    `json:"target" db:"target"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Text returns the side of the pair shown as the question for the given direction
func (w Word) Text(originToTarget bool) string {
	if originToTarget {
		return w.Origin
	}
	return w.Target
}

// Answer returns the side of the pair expected as the answer for the given direction
func (w Word) Answer(originToTarget bool) string {
	return w.Text(!originToTarget)
}
