package notify

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier шлёт оператору алерт о сбое.
type Notifier interface {
	Notify(ctx context.Context, err error, details string) error
}

type telegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewFromEnv возвращает телеграм-нотификатор, если задан токен,
// иначе — заглушку. Алерты не критичны для звонков.
func NewFromEnv() Notifier {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return Noop{}
	}

	chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_ADMIN_CHAT_ID"), 10, 64)
	if err != nil {
		log.Printf("[notify] invalid TELEGRAM_ADMIN_CHAT_ID: %v", err)
		return Noop{}
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("[notify] telegram init failed: %v", err)
		return Noop{}
	}

	return &telegramNotifier{bot: bot, chatID: chatID}
}

func (n *telegramNotifier) Notify(ctx context.Context, err error, details string) error {
	text := fmt.Sprintf("❗ Сбой в обзвоне\n\nОшибка: %v\n\nДетали: %s", err, details)

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, sendErr := n.bot.Send(msg); sendErr != nil {
		log.Printf("[notify] send fail: %v", sendErr)
		return sendErr
	}
	return nil
}

type Noop struct{}

func (Noop) Notify(ctx context.Context, err error, details string) error { return nil }
