package logging

import (
	"testing"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := New(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New(config.LogConfig{})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.ErrorContains(t, err, "parse log level")
}
