package logger

import (
	"log"

	"go.uber.org/zap"
)

var base = zap.NewNop()

// Init builds the process-wide logger. Production config for anything that is
// not the development environment.
func Init(env string) {
	var (
		l   *zap.Logger
		err error
	)
	if env == "development" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	base = l
}

// L returns the process-wide logger
func L() *zap.Logger {
	return base
}

func Info(msg string, fields ...zap.Field)  { base.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { base.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { base.Error(msg, fields...) }

// Sync flushes buffered log entries; call on shutdown
func Sync() {
	_ = base.Sync()
}
