package logger

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger собирает логгер, который пишет одновременно в stdout и в
// файл ./logs/app.log. Уровень берётся из LOG_LEVEL (debug по умолчанию).
func NewLogger() *zap.Logger {
	level := zap.DebugLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zap.ParseAtomicLevel(raw); err == nil {
			level = parsed.Level()
		}
	}

	_ = os.MkdirAll("./logs", 0o755)

	dualConfig := zap.Config{
		Encoding:         "console",
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stdout", "./logs/app.log"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}

	dualLogger, err := dualConfig.Build()
	if err != nil {
		panic(err)
	}

	return dualLogger
}
