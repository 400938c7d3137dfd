package quiz

import (
	"github.com/pkg/errors"

	"github.com/example/wordquiz/pkg/models"
)

var (
	// ErrTopicNotFound is returned for missing topics and for topics the caller may not open yet
	ErrTopicNotFound = errors.Wrap(models.ErrNotFound, "topic")
	// ErrInvalidResults is returned when a submitted quiz does not match the topic
	ErrInvalidResults = errors.New("invalid quiz results")
)
