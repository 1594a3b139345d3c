// Package logging builds the zap-backed application logger.
package logging

import (
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ramsey-B/clover/config"
)

// New creates the application logger. PrettyLogs switches to the development
// encoder for local use; production output is JSON.
func New(cfg config.Config) (ectologger.Logger, error) {
	var zapCfg zap.Config
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)
	return logger.WithField("app", cfg.AppName), nil
}
