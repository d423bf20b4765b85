package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// Формат строки дневного лога: "<время> [<LEVEL>] <сообщение>".
// На него завязан разбор /resumen, менять нельзя.
const journalTimeLayout = "2006-01-02 15:04:05,000"

func JournalEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format(journalTimeLayout))
		},
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			name := l.CapitalString()
			if l == zapcore.WarnLevel {
				name = "WARNING"
			}
			enc.AppendString("[" + name + "]")
		},
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// messageOnlyCore отбрасывает поля, в файл идёт только сообщение.
type messageOnlyCore struct {
	zapcore.Core
}

func (c messageOnlyCore) With([]zapcore.Field) zapcore.Core { return c }

func (c messageOnlyCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c messageOnlyCore) Write(e zapcore.Entry, _ []zapcore.Field) error {
	return c.Core.Write(e, nil)
}

// DailyPath — путь дневного лога: <dir>/YYYY-MM-DD.log.
func DailyPath(dir string, t time.Time) string {
	return filepath.Join(dir, t.Format("2006-01-02")+".log")
}

// DailyFile — append-only файл, который переключается при смене даты.
type DailyFile struct {
	mu  sync.Mutex
	dir string
	day string
	f   *os.File
	now func() time.Time
}

func NewDailyFile(dir string) (*DailyFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DailyFile{dir: dir, now: time.Now}, nil
}

func (d *DailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	day := now.Format("2006-01-02")
	if d.f == nil || day != d.day {
		if d.f != nil {
			_ = d.f.Close()
		}
		f, err := os.OpenFile(DailyPath(d.dir, now), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			d.f = nil
			return 0, err
		}
		d.f, d.day = f, day
	}
	return d.f.Write(p)
}

func (d *DailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	return d.f.Sync()
}

func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}
