package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/spektrchart/engine"
)

func TestLoad_Defaults(t *testing.T) {
	// No config file in an empty working directory
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, engine.DefaultSampleThreshold, cfg.Engine.SampleThreshold)
	assert.Equal(t, engine.DefaultCacheSize, cfg.Engine.CacheSize)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(10*1024*1024), cfg.Server.MaxPayloadSize)
	assert.False(t, cfg.Theme.IsSet())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPEKTRCHART_ENGINE_SAMPLE_THRESHOLD", "250")
	t.Setenv("SPEKTRCHART_ENGINE_SEED_KEY", "saved-query-42")
	t.Setenv("SPEKTRCHART_SERVER_PORT", "9100")
	t.Setenv("SPEKTRCHART_THEME_LABEL_TEXT", "#222222")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Engine.SampleThreshold)
	assert.Equal(t, "saved-query-42", cfg.Engine.SeedKey)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "#222222", cfg.Theme.LabelText)
	assert.True(t, cfg.Theme.IsSet())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "charts.toml")
	content := `
[log]
level = "debug"

[engine]
sample_threshold = 50
seed = 7

[theme]
font_size = 14
palette = ["#111111", "#222222"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Engine.SampleThreshold)
	assert.Equal(t, uint64(7), cfg.Engine.Seed)
	assert.Equal(t, 14, cfg.Theme.FontSize)
	assert.Equal(t, []string{"#111111", "#222222"}, cfg.Theme.Palette)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPEKTRCHART_ENGINE_SAMPLE_THRESHOLD", "-1")

	_, err := Load("")
	assert.ErrorContains(t, err, "engine.sample_threshold")
}

func TestEngineOptions(t *testing.T) {
	cfg := &Config{
		Engine: EngineConfig{SampleThreshold: 10, CacheSize: 4, Seed: 3},
		Theme:  ThemeConfig{Palette: []string{"#abcdef"}},
	}
	assert.Len(t, cfg.EngineOptions(), 4)

	cfg.Theme = ThemeConfig{}
	cfg.Engine.Seed = 0
	assert.Len(t, cfg.EngineOptions(), 2)

	// Options are accepted by the engine
	_, err := engine.NewPipeline(cfg.EngineOptions()...)
	assert.NoError(t, err)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"16MB", 16 * 1024 * 1024, false},
		{"512kb", 512 * 1024, false},
		{"1.5GB", int64(1.5 * 1024 * 1024 * 1024), false},
		{"2048", 2048, false},
		{"", 0, true},
		{"1TB", 0, true},
		{"-5MB", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}
