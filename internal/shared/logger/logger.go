package logger

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	level  zap.AtomicLevel
	once   sync.Once
)

// GetLogger returns zap.Logger instance, but using singleton pattern creates only one reusable instace.
// APP_ENV=production selects the JSON production config, anything else the development one.
// LOG_LEVEL sets the initial level; an unknown value keeps the config default.
func GetLogger() *zap.Logger {
	once.Do(func() {
		// package loggers are built during init, before main loads config
		_ = godotenv.Load()
		cfg := zap.NewDevelopmentConfig()
		if os.Getenv("APP_ENV") == "production" {
			cfg = zap.NewProductionConfig()
		}
		level = cfg.Level

		var err error
		logger, err = cfg.Build()
		if err != nil {
			panic("failed logger setup : " + err.Error())
		}
		if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
			parsed, err := zapcore.ParseLevel(lvl)
			if err != nil {
				logger.Warn("Ignoring invalid LOG_LEVEL", zap.String("level", lvl), zap.Error(err))
				return
			}
			level.SetLevel(parsed)
		}
	})
	return logger
}

// SetLevel changes the level of every logger returned by GetLogger.
func SetLevel(lvl string) error {
	GetLogger()
	parsed, err := zapcore.ParseLevel(lvl)
	if err != nil {
		return err
	}
	level.SetLevel(parsed)
	return nil
}

// Level reports the current level.
func Level() zapcore.Level {
	GetLogger()
	return level.Level()
}
