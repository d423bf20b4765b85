package notify

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"momentum_bot/internal/models"
	"momentum_bot/pkg/logger"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Telegram — пассивный нотифайер в один чат.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    b,
		chatID: chatID,
	}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		logger.Error("telegram send: %v", err)
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// Stdout — заглушка, всё уходит в лог.
type Stdout struct{}

func NewStdout() *Stdout                           { return &Stdout{} }
func (s *Stdout) Send(msg string)                  { logger.Info("%s", msg) }
func (s *Stdout) Sendf(format string, args ...any) { logger.Info(format, args...) }

// CycleMessage — текст уведомления по итогу цикла.
func CycleMessage(symbol string, r *models.CycleResult) string {
	var b strings.Builder
	switch r.Status {
	case models.CycleExecuted:
		fmt.Fprintf(&b, "✅ [%s] %s qty=%s @ %.4f", symbol, r.Signal, r.Qty, r.Price)
		if r.Order != nil {
			fmt.Fprintf(&b, " orderId=%s", r.Order.OrderID)
		}
		if r.PnL != nil {
			fmt.Fprintf(&b, " sim pnl=%.4f USDT (streak=%d)", *r.PnL, r.LossStreak)
		}
	case models.CycleError:
		fmt.Fprintf(&b, "❗️ [%s] ошибка цикла: %s", symbol, r.Error)
	default:
		fmt.Fprintf(&b, "[%s] %s", symbol, r.Status)
		if r.Reason != "" {
			fmt.Fprintf(&b, ": %s", r.Reason)
		}
	}
	if r.RSI != nil {
		fmt.Fprintf(&b, " | RSI=%.2f", *r.RSI)
	}
	return b.String()
}

// Notify — шлём только то, на что стоит смотреть: сделки и ошибки.
func Notify(_ context.Context, n Notifier, symbol string, r *models.CycleResult) {
	if n == nil || r == nil {
		return
	}
	if r.Status != models.CycleExecuted && r.Status != models.CycleError {
		return
	}
	n.Send(CycleMessage(symbol, r))
}
