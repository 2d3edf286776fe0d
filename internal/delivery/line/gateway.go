package line

import (
	"context"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/domain/entities"
)

// Gateway sends messages through the LINE Messaging API. In local test mode
// every send is logged instead of hitting the platform, so the rest of the
// pipeline can be exercised without channel credentials.
type Gateway struct {
	bot       *linebot.Client
	localMode bool
	logger    *zap.Logger
}

func NewGateway(bot *linebot.Client, localMode bool, logger *zap.Logger) *Gateway {
	return &Gateway{bot: bot, localMode: localMode, logger: logger}
}

// Reply consumes the single-use reply token tied to an inbound event.
func (g *Gateway) Reply(ctx context.Context, replyToken, text string) error {
	if g.localMode {
		g.logger.Info("local test mode: reply suppressed",
			zap.String("reply_token", replyToken),
			zap.String("text", text),
		)
		return nil
	}

	_, err := g.bot.ReplyMessage(replyToken, linebot.NewTextMessage(text)).WithContext(ctx).Do()
	return err
}

// PushText sends an unsolicited plain text message.
func (g *Gateway) PushText(ctx context.Context, userID, text string) error {
	return g.push(ctx, userID, linebot.NewTextMessage(text))
}

// PushQuestion sends the rendered question with one quick-reply button per
// option.
func (g *Gateway) PushQuestion(ctx context.Context, userID string, q entities.Question, correctCount int) error {
	msg := linebot.NewTextMessage(renderQuestion(q, correctCount)).
		WithQuickReplies(answerQuickReplies(q))
	return g.push(ctx, userID, msg)
}

// PushContinuePrompt offers the next question without auto-dispatching it.
func (g *Gateway) PushContinuePrompt(ctx context.Context, userID string) error {
	msg := linebot.NewTextMessage(msgContinue).
		WithQuickReplies(continueQuickReplies())
	return g.push(ctx, userID, msg)
}

func (g *Gateway) push(ctx context.Context, userID string, messages ...linebot.SendingMessage) error {
	if g.localMode {
		g.logger.Info("local test mode: push suppressed",
			zap.String("user_id", userID),
			zap.Int("messages", len(messages)),
		)
		return nil
	}

	_, err := g.bot.PushMessage(userID, messages...).WithContext(ctx).Do()
	return err
}
