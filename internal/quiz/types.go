package quiz

import (
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/example/wordquiz/pkg/models"
)

// Caller identifies who is asking for a quiz
type Caller struct {
	ID   int64
	Role string
}

// Question is a single multiple-choice question
type Question struct {
	WordID         int64    `json:"word_id"`
	OriginToTarget bool     `json:"origin_to_target"`
	Word           string   `json:"word"`
	Options        []string `json:"options"`
	CorrectAnswer  int      `json:"correct_answer"` // index into Options
}

// Payload is everything a client needs to run a quiz without further lookups
type Payload struct {
	CorrectPts    int        `json:"correct_pts"`
	OriginIcon    string     `json:"origin_icon"`
	TargetIcon    string     `json:"target_icon"`
	IsDueRevision bool       `json:"is_due_revision"`
	Questions     []Question `json:"questions"`
}

// WordResult is one line of the results page
type WordResult struct {
	WordID    int64  `json:"word_id"`
	Origin    string `json:"origin"`
	Target    string `json:"target"`
	IsCorrect bool   `json:"is_correct"`
}

// Summary is returned after a quiz has been processed
type Summary struct {
	Words   []WordResult `json:"words"`
	Correct int          `json:"correct"`
	Total   int          `json:"total"`
	Points  int          `json:"points"`
}

// TopicSummary is a topic together with how many of its words the caller should revise
type TopicSummary struct {
	models.Topic
	WordsDue int  `json:"words_due"`
	IsLive   bool `json:"is_live"`
}

// ParseResults converts submitted answers keyed by word id strings
func ParseResults(raw map[string]bool) (map[int64]bool, error) {
	results := make(map[int64]bool, len(raw))
	for key, correct := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.Wrapf(ErrInvalidResults, "bad word id %q", key)
		}
		results[id] = correct
	}
	return results, nil
}

func sortedIDs(results map[int64]bool) []int64 {
	ids := make([]int64, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
