package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"touragency/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testApp = config.AppConfig{Name: "tour-agency", Environment: "test", Version: "0.1.0"}

func TestNew_StreamOutputsHaveNoCloser(t *testing.T) {
	for _, output := range []string{"", "stdout", "STDERR"} {
		logger, closer, err := New(config.LoggingConfig{Output: output}, testApp)
		require.NoError(t, err, output)
		assert.NotNil(t, logger)
		assert.Nil(t, closer)
	}
}

func TestNew_ActivityLineInBothMode(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "tour_agency.log")
	logger, closer, err := New(config.LoggingConfig{Output: "both", FilePath: logPath}, testApp)
	require.NoError(t, err)

	logger.Info().Int64("user_id", 3).Str("action", "BOOK_TOUR").Str("ip", "10.0.0.9").Msg("Booked tour 2")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, `"action":"BOOK_TOUR"`)
	assert.Contains(t, line, `"user_id":3`)
	assert.Contains(t, line, `"message":"Booked tour 2"`)
	assert.Contains(t, line, `"app":"tour-agency"`)
	assert.Contains(t, line, `"env":"test"`)
	assert.Contains(t, line, `"level":"info"`)
}

func TestNew_LevelFiltersFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, closer, err := New(config.LoggingConfig{Level: " WARN ", Output: "file", FilePath: logPath}, testApp)
	require.NoError(t, err)
	logger.Info().Msg("user 1: LOGIN")
	logger.Warn().Msg("redis unavailable")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "user 1: LOGIN")
	assert.Contains(t, string(data), "redis unavailable")
}

func TestNew_UnknownLevelMeansInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "info.log")
	logger, closer, err := New(config.LoggingConfig{Level: "chatty", Output: "file", FilePath: logPath}, testApp)
	require.NoError(t, err)
	logger.Debug().Msg("session decoded")
	logger.Info().Msg("tour agency started")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "session decoded")
	assert.Contains(t, string(data), "tour agency started")
}

func TestNew_ConsoleFormatToFileIsPlainText(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, closer, err := New(config.LoggingConfig{Format: "console", Output: "file", FilePath: logPath}, testApp)
	require.NoError(t, err)
	logger.Info().Str("action", "LOGOUT").Msg("User bob logged out")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "User bob logged out")
	assert.Contains(t, text, "action=LOGOUT")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(text), "{"))
	assert.NotContains(t, text, "\x1b[")
}

func TestNew_FileIsAppendedAcrossRestarts(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "tour_agency.log")
	cfg := config.LoggingConfig{Output: "file", FilePath: logPath}

	for _, msg := range []string{"first run", "second run"} {
		logger, closer, err := New(cfg, testApp)
		require.NoError(t, err)
		logger.Info().Msg(msg)
		require.NoError(t, closer.Close())
	}

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
	assert.Less(t, strings.Index(string(data), "first run"), strings.Index(string(data), "second run"))
}

func TestNew_FileOutputErrors(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "file"}, testApp)
	assert.Error(t, err)

	_, _, err = New(config.LoggingConfig{Output: "both", FilePath: filepath.Join(t.TempDir(), "missing", "x.log")}, testApp)
	assert.Error(t, err)
}
