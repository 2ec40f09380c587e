package godeck

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger constructs a console zap logger writing "LEVEL: message"
// lines to stderr. Verbosity 0 shows warnings and errors only, 1 adds
// build progress at info, 2 and up adds shape and autofit debug lines.
func NewLogger(verbosity int) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	switch {
	case verbosity >= 2:
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case verbosity == 1:
		level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey:       "message",
		LevelKey:         "level",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: ": ",
	}

	cfg := zap.Config{
		Level:             level,
		Encoding:          "console",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}

	return cfg.Build()
}

// ensureLogger returns log, or a no-op logger when nil, so library
// callers can pass nil without guarding every call site.
func ensureLogger(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
