package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, cfg.EmbeddingHost, cfg.VisionHost)
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://models.internal:9100"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithVisionModel("gpt-4o-mini"),
	)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://models.internal:9100/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://models.internal:9100/v1", cfg.VisionHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", cfg.VisionModel)
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "bare host", host: "http://localhost:11434", want: "http://localhost:11434/v1"},
		{name: "trailing slash", host: "http://localhost:11434/", want: "http://localhost:11434/v1"},
		{name: "already normalized", host: "http://localhost:11434/v1", want: "http://localhost:11434/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host))
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
			assert.Equal(t, tt.want, cfg.VisionHost)
		})
	}
}

func TestConfig_Validate_Missing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "no embedding host", mutate: func(c *Config) { c.EmbeddingHost = "" }},
		{name: "no vision host", mutate: func(c *Config) { c.VisionHost = "" }},
		{name: "no embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }},
		{name: "no vision model", mutate: func(c *Config) { c.VisionModel = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
