package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewAppliesLevel(t *testing.T) {
	log, err := New("movies-api", "production", "warn", "json")
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))
}

func TestNewDevelopmentDebug(t *testing.T) {
	log, err := New("movies-api", "development", "debug", "console")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("movies-api", "development", "loud", "console")
	assert.ErrorContains(t, err, "log level")

	_, err = New("movies-api", "development", "info", "xml")
	assert.ErrorContains(t, err, "log format")
}
