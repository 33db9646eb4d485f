package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestInit_SetsLevel(t *testing.T) {
	Init("error")
	assert.False(t, Logger().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Logger().Core().Enabled(zapcore.ErrorLevel))
}
