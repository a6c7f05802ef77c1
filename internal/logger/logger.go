package logger

import (
	"fmt"

	"github.com/solaros/solar-os/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new structured logger.
// JSON output is used for the "json" format and always in production.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// WithOperation adds store operation context to logger
func WithOperation(logger *zap.Logger, operation, recordID string) *zap.Logger {
	fields := []zap.Field{zap.String("operation", operation)}
	if recordID != "" {
		fields = append(fields, zap.String("record_id", recordID))
	}
	return logger.With(fields...)
}

// WithSlot adds persistence slot context to logger
func WithSlot(logger *zap.Logger, driver, slotKey string) *zap.Logger {
	return logger.With(
		zap.String("slot_driver", driver),
		zap.String("slot_key", slotKey),
	)
}
