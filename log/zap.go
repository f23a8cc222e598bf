package log

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var defaultLogger *zap.Logger

func Initialize(level string, isDebug bool) error {
	log, err := New(level, isDebug)
	if err != nil {
		return err
	}

	defaultLogger = log
	return nil
}

func New(level string, isDebug bool) (*zap.Logger, error) {
	var config zap.Config

	if isDebug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	// override log level by configuration
	l := zap.ErrorLevel
	switch strings.ToUpper(level) {
	case "TRACE", "DEBUG":
		l = zap.DebugLevel
	case "INFO":
		l = zap.InfoLevel
	case "WARN":
		l = zap.WarnLevel
	}

	config.Level = zap.NewAtomicLevelAt(l)

	return config.Build()
}

func mustDefaultLogger() *zap.Logger {
	if defaultLogger == nil {
		panic("use photoapp logger without initializing")
	}

	return defaultLogger
}

func DefaultLogger() *zap.Logger {
	return mustDefaultLogger()
}

// Sync flushes the default logger, if any.
func Sync() {
	if defaultLogger != nil {
		_ = defaultLogger.Sync()
	}
}
