package service

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"momentum_bot/internal/journal"
	"momentum_bot/internal/notify"
	"momentum_bot/internal/runner"
	"momentum_bot/pkg/logger"
)

const (
	btnRun     = "▶️ Ejecutar"
	btnStatus  = "📊 Status"
	btnResumen = "🧾 Resumen"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	// чужие чаты молча игнорируем
	if msg.Chat.ID != t.chatID {
		logger.Warn("telegram: message from foreign chat %d ignored", msg.Chat.ID)
		return
	}

	cmd := msg.Text
	if msg.IsCommand() {
		cmd = "/" + msg.Command()
	}

	switch cmd {
	case "/start", "/help":
		t.handleStart()
	case "/run", btnRun:
		t.handleRun(ctx)
	case "/status", btnStatus:
		t.handleStatus(ctx)
	case "/resumen", btnResumen:
		t.handleResumen()
	default:
		t.Send(t.chatID, "Не понял. /run, /status, /resumen")
	}
}

func (t *Telegram) handleStart() {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnRun),
			tgbotapi.NewKeyboardButton(btnStatus),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnResumen),
		),
	)

	m := tgbotapi.NewMessage(t.chatID, formatHelp(t.symbol, t.cy.Last()))
	m.ReplyMarkup = kb
	if _, err := t.api.Send(m); err != nil {
		logger.Error("handleStart error: %v", err)
	}
}

func (t *Telegram) handleRun(ctx context.Context) {
	res, err := t.cy.Run(ctx)
	if errors.Is(err, runner.ErrCycleBusy) {
		t.Send(t.chatID, "⏳ Цикл уже идёт, попробуй позже")
		return
	}
	if err != nil {
		t.Send(t.chatID, "❗️ "+err.Error())
		return
	}
	t.Send(t.chatID, notify.CycleMessage(t.symbol, res))
}

func (t *Telegram) handleStatus(ctx context.Context) {
	st, err := t.cy.Status(ctx)
	if err != nil {
		t.Send(t.chatID, "❗️ Ошибка статуса: "+err.Error())
		return
	}
	t.Send(t.chatID, formatStatus(st))
}

func (t *Telegram) handleResumen() {
	day := time.Now()
	sum, err := journal.Summarize(t.logDir, day)
	if err != nil {
		t.Send(t.chatID, "❗️ "+err.Error())
		return
	}
	t.Send(t.chatID, formatSummary(day, sum))
}
