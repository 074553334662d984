package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("otro"))
}

func TestOrNop(t *testing.T) {
	l := OrNop(nil)
	assert.NotNil(t, l)
	// no debe entrar en pánico
	l.Component("test").Info().Str("k", "v").Msg("descartado")

	base := Nop()
	assert.Same(t, base, OrNop(base))
}

func TestNew_SalidaJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Out: &buf})
	l.Component("ledger").Debug().Msg("filtrado")
	l.Component("ledger").Info().Str("item_id", "x").Msg("aplicado")

	out := buf.String()
	assert.NotContains(t, out, "filtrado")
	assert.Contains(t, out, `"component":"ledger"`)
	assert.Contains(t, out, `"item_id":"x"`)
}
