package quiz

// Config holds the tunable quiz settings
type Config struct {
	// Maximum number of questions in one quiz
	MaxQuizLength int
	// Points awarded for each correct answer
	CorrectAnswerPts int
	// Icons shown next to origin and target words
	OriginIcon string
	TargetIcon string
}

// DefaultConfig returns the default quiz configuration
func DefaultConfig() Config {
	return Config{
		MaxQuizLength:    12,
		CorrectAnswerPts: 10,
		OriginIcon:       "🇬🇧",
		TargetIcon:       "🇪🇸",
	}
}
