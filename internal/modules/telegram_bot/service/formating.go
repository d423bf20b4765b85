package service

import (
	"fmt"
	"strings"
	"time"

	"momentum_bot/internal/journal"
	"momentum_bot/internal/models"
)

func formatHelp(symbol string, last *models.CycleResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Momentum bot, пара %s.\n\n", symbol)
	b.WriteString("/run — прогнать цикл\n")
	b.WriteString("/status — цена, индикаторы, позиции\n")
	b.WriteString("/resumen — сигналы за сегодня\n")
	if last != nil {
		fmt.Fprintf(&b, "\nПоследний цикл: %s в %s", last.Status, last.FinishedAt.Format("15:04:05"))
	}
	return b.String()
}

func formatStatus(st *models.MarketStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s @ %s\n", st.Symbol, f4(st.Price))
	fmt.Fprintf(&b, "RSI: %s\n", optF2(st.RSI))
	if st.EMAFast != nil || st.EMASlow != nil {
		fmt.Fprintf(&b, "EMA fast/slow: %s / %s\n", optF2(st.EMAFast), optF2(st.EMASlow))
	}
	fmt.Fprintf(&b, "Сигнал: %s\n", st.Signal)
	if len(st.OpenPositions) == 0 {
		b.WriteString("📭 Открытых позиций нет")
		return b.String()
	}
	b.WriteString("Открытые позиции:")
	for _, p := range st.OpenPositions {
		fmt.Fprintf(&b, "\n- %s [%s] size=%s", p.Symbol, p.Side, f4(p.Size))
		if p.EntryPrice != nil {
			fmt.Fprintf(&b, " @ %s", f4(*p.EntryPrice))
		}
	}
	return b.String()
}

func formatSummary(day time.Time, s journal.Summary) string {
	return fmt.Sprintf("🧾 %s\nbuy: %d\nsell: %d\nno_signal: %d\nвсего: %d",
		day.Format(journal.DateLayout), s.Buy, s.Sell, s.NoSignal, s.Total)
}

func f4(v float64) string { return fmt.Sprintf("%.4f", v) }

func optF2(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
