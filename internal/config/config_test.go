package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xirelogy/go-qi/internal/config"
	"github.com/xirelogy/go-qi/internal/vm"
)

func TestParseFillsOmittedFieldsFromDefaults(t *testing.T) {
	cfg, err := config.Parse(`
[vm]
max_frames = 32
`)
	require.NoError(t, err)

	defaults := vm.DefaultConfig()
	assert.Equal(t, 32, cfg.MaxFrames)
	assert.Equal(t, defaults.MaxStackSlots, cfg.MaxStackSlots)
	assert.Equal(t, defaults.GCGrowthFactor, cfg.GCGrowthFactor)
	assert.Equal(t, defaults.InitialGCThreshold, cfg.InitialGCThreshold)
}

func TestParseEmptyContentReturnsPureDefaults(t *testing.T) {
	cfg, err := config.Parse("")
	require.NoError(t, err)
	assert.Equal(t, vm.DefaultConfig(), cfg)
}

func TestParseAllFieldsOverridden(t *testing.T) {
	cfg, err := config.Parse(`
[vm]
max_frames = 16
max_stack_slots = 4096
gc_growth_factor = 1.5
initial_gc_threshold = 2048
instruction_limit = 100000
`)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.MaxFrames)
	assert.Equal(t, 4096, cfg.MaxStackSlots)
	assert.Equal(t, 1.5, cfg.GCGrowthFactor)
	assert.Equal(t, 2048, cfg.InitialGCThreshold)
	assert.Equal(t, 100000, cfg.InstructionLimit)
}

func TestParseInvalidTomlReturnsError(t *testing.T) {
	_, err := config.Parse(`not valid toml =====`)
	assert.Error(t, err)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := config.Load("/nonexistent/path/does/not/exist.toml")
	assert.Error(t, err)
}
