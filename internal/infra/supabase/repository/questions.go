package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/domain/entities"
)

const questionsTable = "questions"

// questionRow mirrors one row of the questions table.
type questionRow struct {
	ID              int      `json:"id"`
	QuestionText    string   `json:"question_text"`
	Option1         string   `json:"option1"`
	Option2         string   `json:"option2"`
	Option3         string   `json:"option3"`
	Option4         string   `json:"option4"`
	CorrectAnswer   int      `json:"correct_answer"`
	Explanation     string   `json:"explanation"`
	TopicTag        string   `json:"topic_tag"`
	Difficulty      string   `json:"difficulty"`
	Tags            []string `json:"tags"`
	AnswerFeedback  string   `json:"answer_feedback"`
	EmotionResponse string   `json:"emotion_response"`
}

// QuestionRepository reads the question set from the remote questions table.
type QuestionRepository struct {
	client *postgrest.Client
	logger *zap.Logger
}

// NewQuestionRepository creates a QuestionRepository over the given client.
func NewQuestionRepository(client *postgrest.Client, logger *zap.Logger) *QuestionRepository {
	return &QuestionRepository{client: client, logger: logger}
}

// GetAll fetches every row of the questions table and returns the valid
// subset. Malformed rows (missing options, answer out of range) are dropped
// with a warning and never surface to users. Row order carries no meaning;
// callers pick uniformly at random.
func (r *QuestionRepository) GetAll(_ context.Context) ([]entities.Question, error) {
	data, _, err := r.client.From(questionsTable).Select("*", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}

	var rows []questionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	questions := make([]entities.Question, 0, len(rows))
	for _, row := range rows {
		q := entities.Question{
			ID:          row.ID,
			Prompt:      row.QuestionText,
			Options:     []string{row.Option1, row.Option2, row.Option3, row.Option4},
			Answer:      row.CorrectAnswer,
			Explanation: row.Explanation,

			Topic:           row.TopicTag,
			Difficulty:      entities.Difficulty(row.Difficulty),
			Tags:            row.Tags,
			AnswerFeedback:  row.AnswerFeedback,
			EmotionResponse: row.EmotionResponse,
		}

		if err := q.Validate(); err != nil {
			r.logger.Warn("dropping malformed question row",
				zap.Int("question_id", row.ID),
				zap.Error(err),
			)
			continue
		}

		questions = append(questions, q)
	}

	return questions, nil
}

// Ping checks that the questions table is reachable.
func (r *QuestionRepository) Ping(_ context.Context) error {
	if _, _, err := r.client.From(questionsTable).Select("id", "exact", true).Execute(); err != nil {
		return fmt.Errorf("ping questions: %w", err)
	}
	return nil
}
