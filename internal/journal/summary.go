// Package journal читает дневной лог обратно и сводит сигналы за день.
package journal

import (
	"bufio"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"momentum_bot/pkg/logger"
)

const DateLayout = "2006-01-02"

type Summary struct {
	Buy      int `json:"buy"`
	Sell     int `json:"sell"`
	NoSignal int `json:"no_signal"`
	Total    int `json:"total"`
}

// Add учитывает одну строку лога. Строки без "señal=" не считаются.
func (s *Summary) Add(line string) {
	i := strings.Index(line, "señal=")
	if i < 0 {
		return
	}
	v := line[i+len("señal="):]
	if j := strings.IndexAny(v, ", \t"); j >= 0 {
		v = v[:j]
	}
	switch v {
	case "buy":
		s.Buy++
	case "sell":
		s.Sell++
	case "no_signal":
		s.NoSignal++
	default:
		return
	}
	s.Total++
}

// Summarize — сводка за день. Нет файла — нулевая сводка, не ошибка.
func Summarize(dir string, day time.Time) (Summary, error) {
	var s Summary

	f, err := os.Open(logger.DailyPath(dir, day))
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, errors.Wrap(err, "open journal")
	}
	defer func() {
		_ = f.Close()
	}()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		s.Add(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return s, errors.Wrap(err, "read journal")
	}
	return s, nil
}
