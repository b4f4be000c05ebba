package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngjit-go/packages/compiler/src/logging"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]logging.Level{
		"debug":   logging.LevelDebug,
		"INFO":    logging.LevelInfo,
		"warning": logging.LevelWarn,
		"error":   logging.LevelError,
		"":        logging.LevelInfo,
	} {
		assert.Equal(t, want, logging.ParseLevel(in), in)
	}
}

func TestLogger(t *testing.T) {
	t.Run("should write json records with component and error fields", func(t *testing.T) {
		var buf bytes.Buffer
		log := logging.New(&logging.Config{Level: logging.LevelInfo, Format: "json", Output: &buf, Component: "cli"})
		log.WithComponent("jit").Warn(context.Background(), errors.New("boom"), "slow compile", "module", "AppModule")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "WARN", rec["level"])
		assert.Equal(t, "slow compile", rec["msg"])
		assert.Equal(t, "jit", rec["component"])
		assert.Equal(t, "AppModule", rec["module"])
		assert.Equal(t, "boom", rec["error"])
	})

	t.Run("should drop records below the level", func(t *testing.T) {
		var buf bytes.Buffer
		log := logging.New(&logging.Config{Level: logging.LevelWarn, Format: "text", Output: &buf})
		log.Debug(context.Background(), "hidden")
		log.Info(context.Background(), "hidden")
		log.With("k", "v").Error(context.Background(), nil, "shown")
		assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
		assert.Contains(t, buf.String(), "msg=shown k=v")
	})

	t.Run("should discard everything when nop", func(t *testing.T) {
		log := logging.Nop()
		log.Error(context.Background(), errors.New("x"), "ignored")
	})
}
