package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-stock/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestNewWriter_EscribeJSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(&buf, "info").Named("inventory")
	log.Info().Str("sku", "A-1").Msg("movimiento registrado")

	line := decodeLine(t, &buf)
	assert.Equal(t, "inventory", line["component"])
	assert.Equal(t, "A-1", line["sku"])
	assert.Equal(t, "info", line["level"])
}

func TestNewWriter_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(&buf, "WARN")
	log.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())
	log.Warn().Msg("sí debe salir")
	assert.NotZero(t, buf.Len())
}

func TestNew_CampoAppYSalidaConfigurable(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "debug", App: "bodega-stock", Output: &buf})
	log.WithStr("request_id", "req-1").Debug().Msg("petición")

	line := decodeLine(t, &buf)
	assert.Equal(t, "bodega-stock", line["app"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "debug", line["level"])
	assert.Contains(t, line, "time")
}

func TestNew_DevelopmentEsConsola(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "development", Output: &buf})
	log.Info().Str("sku", "A-1").Msg("legible")

	out := buf.String()
	assert.False(t, strings.HasPrefix(out, "{"), "la consola no escribe JSON: %q", out)
	assert.Contains(t, out, "legible")
	assert.Contains(t, out, "sku")
	assert.Contains(t, out, "A-1")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, logger.ParseLevel(in), "nivel %q", in)
	}
}

func TestDebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, logger.NewWriter(&buf, "debug").DebugEnabled())
	assert.False(t, logger.NewWriter(&buf, "info").DebugEnabled())
	assert.False(t, logger.NewNop().DebugEnabled())
}

func TestNewNop_NoEscribe(t *testing.T) {
	log := logger.NewNop()
	assert.NotPanics(t, func() { log.Error().Msg("descartado") })
}
