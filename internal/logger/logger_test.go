package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("Should honour the requested level", func(t *testing.T) {
		log, err := New("warn")
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	})
	t.Run("Should disable logging for none", func(t *testing.T) {
		log, err := New(LevelNone)
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zapcore.ErrorLevel))
	})
	t.Run("Should reject unknown levels", func(t *testing.T) {
		_, err := New("loud")
		assert.Error(t, err)
	})
}
