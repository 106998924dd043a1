package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigValidates(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadEmbeddingDim(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmbeddingDim = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestValidateRejectsBadDamping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DiffusionDamping = 1.5
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BridgeSThreshold = 4

	data, err := cfg.ToYAML()
	assert.NoError(t, err)

	loaded, err := LoadConfigYAML(data)
	assert.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigJSONOverridesDefaults(t *testing.T) {
	loaded, err := LoadConfigJSON([]byte(`{"motif_min_support": 7}`))
	assert.NoError(t, err)

	want := DefaultConfig()
	want.MotifMinSupport = 7
	assert.Equal(t, want, loaded)
}
