package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1.3, cfg.Estimation.SafetyFactor)
	assert.Equal(t, 240.0, cfg.Estimation.DefaultVoltage)
	assert.Equal(t, "hea", cfg.Estimation.Method)

	assert.True(t, cfg.Gaps.Enabled)
	assert.Equal(t, "UTC", cfg.Gaps.Timezone)
	assert.Equal(t, 1.5, cfg.Gaps.Tolerance)

	assert.Equal(t, "legacy", cfg.Code.Edition)
	assert.Equal(t, 1, cfg.Batch.Parallelism)
	assert.Equal(t, "info", cfg.Logging.Level)
}
