// SPDX-License-Identifier: MIT

// Package logger builds the zap loggers used by sessions and the CLI.
package logger

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by New.
const (
	ModeDev  = "dev"
	ModeProd = "prod"
	ModeNop  = "nop"
)

// ErrUnknownMode is returned by New for an unrecognised mode.
var ErrUnknownMode = errors.New("logger: unknown mode")

// New returns a console logger at debug level for "dev" (also "development"
// and ""), a JSON logger at info level for "prod" (also "production") and a
// no-op logger for "nop".
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeDev, "development":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case ModeProd, "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case ModeNop:
		return zap.NewNop(), nil
	default:
		return nil, fmt.Errorf("%w: %q (want %s, %s or %s)", ErrUnknownMode, mode, ModeDev, ModeProd, ModeNop)
	}

	return cfg.Build()
}
