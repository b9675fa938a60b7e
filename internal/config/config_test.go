package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "PORT", "DATABASE_URL", "AUTH_MODE", "SAMPLE_RATE", "MAX_SCORE_BYTES", "MAX_SCORE_BEATS", "MAX_RENDER_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, AuthModeNone, cfg.AuthMode)
	assert.Equal(t, uint32(44100), cfg.SampleRate)
	assert.Equal(t, 65536, cfg.MaxScoreBytes)
	assert.Equal(t, 100000, cfg.MaxScoreBeats)
	assert.Equal(t, 1800, cfg.MaxRenderSeconds)
	assert.False(t, cfg.PersistenceEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUTH_MODE", "gateway")
	t.Setenv("DATABASE_URL", "postgres://localhost/metrome")
	t.Setenv("SAMPLE_RATE", "48000")
	t.Setenv("MAX_SCORE_BYTES", "not-a-number")
	t.Setenv("MAX_SCORE_BEATS", "5000")
	t.Setenv("MAX_RENDER_SECONDS", "90")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.IsGatewayMode())
	assert.True(t, cfg.PersistenceEnabled())
	assert.Equal(t, uint32(48000), cfg.SampleRate)
	assert.Equal(t, 65536, cfg.MaxScoreBytes, "invalid numbers fall back to the default")
	assert.Equal(t, 5000, cfg.MaxScoreBeats)
	assert.Equal(t, 90, cfg.MaxRenderSeconds)
}

func TestParseRenderProfile(t *testing.T) {
	profile, err := ParseRenderProfile([]byte(`
sample_rate: 48000
weak:
  frequency_hz: 1000
  length_ms: 20
  amplitude: 0.5
`))
	require.NoError(t, err)

	assert.Equal(t, uint32(48000), profile.SampleRate)
	assert.Equal(t, 1000.0, profile.Weak.FrequencyHz)
	assert.Equal(t, 20.0, profile.Weak.LengthMs)
	assert.Equal(t, 1760.0, profile.Strong.FrequencyHz, "strong click keeps its default")
}

func TestParseRenderProfile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"malformed", "sample_rate: [", "parse render profile"},
		{"bad amplitude", "strong: {amplitude: 2}", "invalid render profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRenderProfile([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRenderProfile_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sample_rate: 22050\n"), 0o600))

	profile, err := LoadRenderProfile(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(22050), profile.SampleRate)

	_, err = LoadRenderProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
