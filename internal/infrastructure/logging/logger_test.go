package logging

import (
	"testing"

	"ideamap-canvas/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zap.AtomicLevel
		wantErr bool
	}{
		{in: "debug", want: zap.NewAtomicLevelAt(zap.DebugLevel)},
		{in: "", want: zap.NewAtomicLevelAt(zap.InfoLevel)},
		{in: "warn", want: zap.NewAtomicLevelAt(zap.WarnLevel)},
		{in: "error", want: zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Level(), level)
		})
	}
}

func TestNew(t *testing.T) {
	logger, err := New(config.Logging{Level: "warn", Format: "console"}, config.Development)
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	logger, err = New(config.Logging{Level: "debug", Format: "json"}, config.Production)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = New(config.Logging{Level: "chatty"}, config.Development)
	assert.Error(t, err)
}
