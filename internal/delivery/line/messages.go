// messages.go contains message templates and formatting helpers for LINE.

package line

import (
	"fmt"
	"strings"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/domain/entities"
)

// Postback payloads carried by the quiz buttons.
const (
	answerPrefix    = "answer_"
	payloadContinue = "continue"
)

// Recognized text commands (exact match).
const (
	cmdStart = "start"
	cmdScore = "score"
	cmdReset = "reset"
)

const (
	msgHelp = "Send \"start\" to get an anatomy question, \"score\" to see your stats, or \"reset\" to wipe your progress."

	msgContinue = "Ready for the next one?"

	msgResetDone   = "✅ Reset complete! Your progress is back to zero. Send \"start\" to begin again."
	msgResetFailed = "⚠️ Couldn't reset your data right now. Please try again later."

	msgRunning = "Anatomy quiz bot is running!"
)

func greeting(total int) string {
	return fmt.Sprintf("🔥 %d anatomy strikes so far. Here comes your question!", total)
}

func scoreText(stats *entities.UserStats) string {
	return fmt.Sprintf("Your score: %d correct / %d wrong", stats.Correct, stats.Wrong)
}

// renderQuestion formats the prompt, the 4 numbered options and the running
// correct count.
func renderQuestion(q entities.Question, correctCount int) string {
	var sb strings.Builder

	sb.WriteString("🧠 Anatomy question\n")
	sb.WriteString(fmt.Sprintf("Running total: %d correct\n\n", correctCount))
	sb.WriteString(q.Prompt)
	sb.WriteString("\n")
	for i, opt := range q.Options {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, opt))
	}
	sb.WriteString("\n\nTap an option below to answer.")

	return sb.String()
}

func answerQuickReplies(q entities.Question) *linebot.QuickReplyItems {
	buttons := make([]*linebot.QuickReplyButton, 0, len(q.Options))
	for i, opt := range q.Options {
		buttons = append(buttons, linebot.NewQuickReplyButton("", &linebot.PostbackAction{
			Label: quickReplyLabel(i+1, opt),
			Data:  fmt.Sprintf("%s%d", answerPrefix, i+1),
		}))
	}
	return linebot.NewQuickReplyItems(buttons...)
}

func continueQuickReplies() *linebot.QuickReplyItems {
	return linebot.NewQuickReplyItems(
		linebot.NewQuickReplyButton("", &linebot.PostbackAction{
			Label: "Next question",
			Data:  payloadContinue,
		}),
	)
}

// quickReplyLabel fits "<n>. <option>" into LINE's 20-character label limit.
func quickReplyLabel(n int, option string) string {
	label := fmt.Sprintf("%d. %s", n, option)
	runes := []rune(label)
	if len(runes) <= 20 {
		return label
	}
	return string(runes[:19]) + "…"
}
