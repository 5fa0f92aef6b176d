package logging

import (
	"go.uber.org/zap"
)

// ZapLogger implements Logger on top of a *zap.SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a ZapLogger at the given level ("debug", "info", "warn",
// "error"). Unknown levels default to info.
func New(level string) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()

	parsedLevel, err := zap.ParseAtomicLevel(level)
	if err == nil {
		cfg.Level = parsedLevel
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{sugar: logger.Sugar()}, nil
}

func (l *ZapLogger) Info(args ...any)                 { l.sugar.Info(args...) }
func (l *ZapLogger) Infof(format string, args ...any) { l.sugar.Infof(format, args...) }
func (l *ZapLogger) Error(args ...any)                 { l.sugar.Error(args...) }
func (l *ZapLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }
func (l *ZapLogger) Warn(args ...any)                  { l.sugar.Warn(args...) }
func (l *ZapLogger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }

func (l *ZapLogger) With(fields ...any) Logger {
	return &ZapLogger{sugar: l.sugar.With(fields...)}
}

func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
