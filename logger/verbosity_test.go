package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityUser))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(5))
}

func TestInitialize(t *testing.T) {
	t.Cleanup(func() {
		Logger = nil
		_ = Initialize(0, false)
	})

	assert.NoError(t, Initialize(VerbosityInfo, false))
	assert.NotNil(t, Logger)
	assert.False(t, JSONOutput)

	assert.NoError(t, Initialize(VerbosityUser, true))
	assert.NotNil(t, Logger)
	assert.True(t, JSONOutput)
}
