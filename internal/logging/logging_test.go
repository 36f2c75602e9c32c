package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWritesToRotatingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "desk.log")
	logger := New(Config{Level: "debug", File: true, FilePath: path, MaxSize: 1})
	logger.Info().Str("instrument", "EURUSD").Msg("trade saved")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "trade saved")
	assert.Contains(t, string(data), "EURUSD")
}

func TestFromContextDefaultsToNop(t *testing.T) {
	t.Parallel()

	logger := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())

	l := zerolog.New(nil).Level(zerolog.WarnLevel)
	got := FromContext(WithLogger(context.Background(), l))
	assert.Equal(t, zerolog.WarnLevel, got.GetLevel())
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	for _, l := range []string{"debug", "INFO", "", "warning", "off"} {
		assert.True(t, ValidLevel(l), l)
	}
	assert.False(t, ValidLevel("verbose"))
}
