package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	// Given
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "production", "info")

	// When
	log.Info("hello", "room", 7)

	// Then
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hello", line["msg"])
	require.Equal(t, "groupchat", line["service"])
	require.EqualValues(t, 7, line["room"])
}

func TestNew_DevelopmentWritesText(t *testing.T) {
	// Given
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "development", "debug")

	// When
	log.Debug("visible")

	// Then
	require.Contains(t, buf.String(), "msg=visible")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
	require.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
