package service

import (
	"fmt"
	"strings"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/domain/entities"
)

// User-facing texts. Technical detail never reaches the user; it goes to
// the server logs instead.
const (
	msgNoQuestions      = "No questions are available right now. Please try again later!"
	msgAllSolved        = "You have solved every question! Send \"reset\" to start over from scratch."
	msgInvalidSelection = "That's not a valid option. Please pick one of the 4 answers."
	msgAlreadyAnswered  = "You already answered this question! Wait for the next one."
	msgNoActive         = "There's no open question right now. Send \"start\" to get one."
	msgProcessingFailed = "Sorry, we couldn't process your answer. Please try again."
)

// renderResult builds the answer-result text: correctness banner, the
// correct option, the user's own pick when wrong, any explanation and
// feedback fields, and the updated correct count.
func renderResult(q entities.Question, choice int, isCorrect bool, correctCount int) string {
	var sb strings.Builder

	if isCorrect {
		sb.WriteString("🎉 Correct!\n\n")
	} else {
		sb.WriteString("❌ Wrong!\n\n")
	}

	sb.WriteString(fmt.Sprintf("Answer: %d. %s\n", q.Answer, q.CorrectOption()))
	if !isCorrect {
		sb.WriteString(fmt.Sprintf("Your answer: %d. %s\n", choice, q.Options[choice-1]))
	}

	if q.AnswerFeedback != "" {
		sb.WriteString("\n💡 " + q.AnswerFeedback + "\n")
	} else if q.Explanation != "" {
		sb.WriteString("\n💡 " + q.Explanation + "\n")
	}
	if q.EmotionResponse != "" {
		sb.WriteString("\n💬 " + q.EmotionResponse + "\n")
	}

	sb.WriteString(fmt.Sprintf("\nYour anatomy power: %d correct", correctCount))
	return sb.String()
}

// renderReminder builds the daily reminder text.
func renderReminder(correctCount int) string {
	return fmt.Sprintf(
		"🌅 Good morning! Ready for today's anatomy challenge?\n\nYou're at %d correct answers. Send \"start\" to continue!",
		correctCount,
	)
}
