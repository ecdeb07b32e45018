package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

// Logger is a leveled printf-style logger backed by zap. It always writes to
// stderr so stdio mode keeps stdout free for MCP traffic.
type Logger struct {
	level  LogLevel
	logger *zap.SugaredLogger
}

func ParseLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return LogDebug
	case "warn", "warning":
		return LogWarn
	case "error":
		return LogError
	default:
		return LogInfo
	}
}

func NewLogger(level string) *Logger {
	logLevel := ParseLevel(level)

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zapLevel(logLevel),
	)

	return NewWithCore(logLevel, core)
}

// NewWithCore wraps an existing zap core, used by tests with an observer.
func NewWithCore(level LogLevel, core zapcore.Core) *Logger {
	return &Logger{
		level:  level,
		logger: zap.New(core).Sugar(),
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{level: LogError + 1, logger: zap.NewNop().Sugar()}
}

func zapLevel(l LogLevel) zapcore.Level {
	switch l {
	case LogDebug:
		return zapcore.DebugLevel
	case LogWarn:
		return zapcore.WarnLevel
	case LogError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.level <= LogDebug {
		l.logger.Debugf(msg, args...)
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.level <= LogInfo {
		l.logger.Infof(msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.level <= LogWarn {
		l.logger.Warnf(msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	if l.level <= LogError {
		l.logger.Errorf(msg, args...)
	}
}

// With returns a child logger carrying structured fields on every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{level: l.level, logger: l.logger.With(keysAndValues...)}
}

func (l *Logger) Sync() error {
	return l.logger.Sync()
}
