package service

import (
	"context"
	"sync"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"momentum_bot/internal/models"
	"momentum_bot/pkg/logger"
)

// pollTimeoutSec меньше стоп-таймаута fx (15s): висящий long poll не должен его съедать.
const pollTimeoutSec = 10

// Cycler — оркестратор глазами бота.
type Cycler interface {
	Run(ctx context.Context) (*models.CycleResult, error)
	Status(ctx context.Context) (*models.MarketStatus, error)
	Last() *models.CycleResult
}

// sender — кусок BotAPI, который нужен хендлерам.
type sender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

// Telegram — командный вход в бота. Слушает только свой чат.
type Telegram struct {
	bot    *tgbot.BotAPI
	api    sender
	chatID int64
	symbol string
	logDir string
	cy     Cycler

	wg sync.WaitGroup
}

func NewTelegram(token string, chatID int64, symbol, logDir string, cy Cycler) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	t := newTelegram(b, chatID, symbol, logDir, cy)
	t.bot = b
	return t, nil
}

func newTelegram(api sender, chatID int64, symbol, logDir string, cy Cycler) *Telegram {
	return &Telegram{
		api:    api,
		chatID: chatID,
		symbol: symbol,
		logDir: logDir,
		cy:     cy,
	}
}

func (t *Telegram) Send(chatID int64, msg string) {
	if _, err := t.api.Send(tgbot.NewMessage(chatID, msg)); err != nil {
		logger.Error("telegram send: %v", err)
	}
}

// Start — long polling в фоне.
func (t *Telegram) Start(ctx context.Context) {
	u := tgbot.NewUpdate(0)
	u.Timeout = pollTimeoutSec
	updates := t.bot.GetUpdatesChan(u)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for update := range updates {
			t.handleUpdate(ctx, update)
		}
	}()
	logger.Info("telegram commands enabled for chat %d", t.chatID)
}

// Stop ждёт цикл обработки апдейтов, но не дольше ctx.
func (t *Telegram) Stop(ctx context.Context) error {
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	return waitGroup(ctx, &t.wg)
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		logger.Warn("telegram stop: %v", ctx.Err())
		return ctx.Err()
	}
}
