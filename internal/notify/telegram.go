// Package notify delivers the final batch summary to configured
// Telegram chats. Purely optional: delivery failures are logged and
// never affect the batch result.
package notify

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pdforge/word-pdf-converter/config"
	"github.com/pdforge/word-pdf-converter/internal/batch"
	"go.uber.org/zap"
)

type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	logger  *zap.Logger
}

// NewNotifier creates a notifier, or returns nil when no bot token is
// configured. A nil Notifier is safe to use; its methods are no-ops.
func NewNotifier(cfg *config.Config, logger *zap.Logger) (*Notifier, error) {
	if cfg.TelegramBotToken == "" {
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &Notifier{
		bot:     bot,
		chatIDs: cfg.NotifyChatIDs,
		logger:  logger.With(zap.String("component", "notify")),
	}, nil
}

// SendSummary delivers the batch summary to every configured chat.
func (n *Notifier) SendSummary(s batch.Summary) {
	if n == nil {
		return
	}

	text := formatSummary(s)
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Warn("Error sending summary notification",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}
}

func formatSummary(s batch.Summary) string {
	return fmt.Sprintf(
		"Batch conversion finished in %s\n"+
			"Total: %d\n"+
			"Converted: %d\n"+
			"Renamed: %d\n"+
			"Failed: %d\n"+
			"Not processed: %d",
		s.Duration.Round(time.Second),
		s.Total, s.Converted, s.Renamed, s.Failed, s.NotProcessed)
}
