package logging

import (
	"testing"

	"github.com/go-playground/assert/v2"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, format string
		want          zapcore.Level
	}{
		{"debug", "json", zapcore.DebugLevel},
		{"WARN", "console", zapcore.WarnLevel},
		{"bogus", "json", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		logger, err := New(tt.level, tt.format)
		assert.Equal(t, nil, err)
		assert.Equal(t, true, logger.Desugar().Core().Enabled(tt.want))
		if tt.want > zapcore.DebugLevel {
			assert.Equal(t, false, logger.Desugar().Core().Enabled(tt.want-1))
		}
	}
}
