package entities

import "errors"

// Difficulty - question difficulty level.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyClinical Difficulty = "clinical"
)

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

var (
	ErrEmptyPrompt      = errors.New("question has empty prompt")
	ErrBadOptions       = errors.New("question must have 4 non-empty options")
	ErrAnswerOutOfRange = errors.New("correct answer must be in range 1..4")
)

// Question is a single multiple-choice item loaded from the questions table.
// Questions are read-only at runtime; rows are seeded out-of-band.
type Question struct {
	ID          int
	Prompt      string
	Options     []string // exactly 4
	Answer      int      // 1-based index into Options
	Explanation string

	// Optional metadata.
	Topic           string
	Difficulty      Difficulty
	Tags            []string
	AnswerFeedback  string
	EmotionResponse string
}

// Validate reports whether the question is well-formed: 4 non-empty options
// and a correct answer index in 1..4. Malformed rows are dropped at load
// time and never reach the candidate pool.
func (q *Question) Validate() error {
	if q.Prompt == "" {
		return ErrEmptyPrompt
	}
	if len(q.Options) != OptionCount {
		return ErrBadOptions
	}
	for _, opt := range q.Options {
		if opt == "" {
			return ErrBadOptions
		}
	}
	if q.Answer < 1 || q.Answer > OptionCount {
		return ErrAnswerOutOfRange
	}
	return nil
}

// CorrectOption returns the text of the correct option.
// The question must be valid.
func (q *Question) CorrectOption() string {
	return q.Options[q.Answer-1]
}
