package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var InfoLogger, FatalLogger = zap.NewNop(), zap.NewNop()

var (
	serviceName = "default"
)

type Config struct {
	Level string // debug|info|warn|error
	Dir   string // каталог дневных логов, пусто — только stdout
}

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

// Init поднимает глобальные логгеры: stdout + дневной файл.
// Возвращает функцию для Sync/закрытия файла.
func Init(cfg Config) (func(), error) {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.Lock(os.Stdout),
			level,
		),
	}

	var file *DailyFile
	if cfg.Dir != "" {
		f, err := NewDailyFile(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("open daily log: %w", err)
		}
		file = f
		cores = append(cores, messageOnlyCore{
			Core: zapcore.NewCore(zapcore.NewConsoleEncoder(JournalEncoderConfig()), file, level),
		})
	}

	l := zap.New(zapcore.NewTee(cores...))
	InfoLogger, FatalLogger = l, l

	return func() {
		_ = l.Sync()
		if file != nil {
			_ = file.Close()
		}
	}, nil
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	InfoLogger.With(
		zap.String("service", serviceName),
	).Info(msg)
}

func Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	InfoLogger.With(
		zap.String("service", serviceName),
	).Warn(msg)
}

func Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	InfoLogger.With(
		zap.String("service", serviceName),
	).Error(msg)
}

func Fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	FatalLogger.With(
		zap.String("service", serviceName),
	).Fatal(msg)
}
