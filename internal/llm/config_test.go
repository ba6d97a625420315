package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigGetModel(t *testing.T) {
	cfg := DefaultConfig()
	assert.NotEmpty(t, cfg.GetModel(TierLite))
	assert.NotEmpty(t, cfg.GetModel(TierStandard))

	// Unknown tier falls back to a configured model
	assert.Equal(t, cfg.Models[TierStandard], cfg.GetModel(ModelTier("huge")))
}

func TestConfigWithModel(t *testing.T) {
	cfg := DefaultConfig()

	// WithModel does not mutate the receiver
	custom := cfg.WithModel(TierStandard, "gemini-exp")
	assert.Equal(t, "gemini-exp", custom.GetModel(TierStandard))
	assert.NotEqual(t, "gemini-exp", cfg.GetModel(TierStandard))
}
