package observability

import (
	"bytes"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	t.Run("production writes JSON with service field", func(t *testing.T) {
		var buf bytes.Buffer
		logger := initLogger(&buf, "localgeo", "production", "info")
		logger.Info().Str("city", "Austin").Msg("resolved")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "localgeo", entry["service"])
		assert.Equal(t, "Austin", entry["city"])
		assert.Contains(t, entry, "caller")
	})

	t.Run("level filters lower entries", func(t *testing.T) {
		var buf bytes.Buffer
		logger := initLogger(&buf, "localgeo", "production", "warn")
		logger.Info().Msg("hidden")
		assert.Empty(t, buf.String())
		assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := initLogger(&buf, "localgeo", "development", "loud")
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})
}
