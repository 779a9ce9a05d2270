package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-backoffice/pkg/logger"
)

func TestParseLevel_ValoresConocidosYDesconocidos(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verboso"))
}

func TestNamed_AgregaComponente(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info").Named("authz")
	log.Warn().Str("resource", "order").Msg("denegado")
	log.Debug().Msg("filtrado por nivel")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "authz", entry["component"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "order", entry["resource"])
}

func TestWithLevel_FatalNoTermina(t *testing.T) {
	var buf bytes.Buffer
	logger.NewWithWriter(&buf, "info").WithLevel(zerolog.FatalLevel).Msg("inesperado")
	assert.Contains(t, buf.String(), `"level":"fatal"`)
}

func TestNamed_LoggerNilDescarta(t *testing.T) {
	var l *logger.Logger
	assert.NotPanics(t, func() { l.Named("x").Info().Msg("nada") })
}
