package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/pawsitivecheck/syncconsole/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.Log
		level zapcore.Level
	}{
		{"json info", config.Log{Level: "info", Format: "json"}, zapcore.InfoLevel},
		{"console debug", config.Log{Level: "DEBUG", Format: "console"}, zapcore.DebugLevel},
		{"unknown level falls back to info", config.Log{Level: "chatty"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
			}
		})
	}
}
