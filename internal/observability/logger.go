package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

// NewLogger constructs a zap logger emitting structured JSON. LOG_LEVEL selects the level.
// Output goes to stdout unless outputPaths are given.
func NewLogger(outputPaths ...string) (*zap.Logger, error) {
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))))); err != nil {
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		CallerKey:     "caller",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		StacktraceKey: "stacktrace",
	}

	cfg := zap.Config{
		Level:             level,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       outputPaths,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}

	return cfg.Build()
}
