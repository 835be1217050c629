// Package config loads the VM's runtime tunables from a TOML file, keeping
// the interpreter's resource limits out of compiled-in constants.
package config

import (
	"github.com/BurntSushi/toml"

	"github.com/xirelogy/go-qi/internal/vm"
)

// File mirrors the on-disk TOML shape:
//
//	[vm]
//	max_frames = 64
//	max_stack_slots = 16384
//	gc_growth_factor = 2.0
//	initial_gc_threshold = 1048576
//	instruction_limit = 0
type File struct {
	VM struct {
		MaxFrames          int     `toml:"max_frames"`
		MaxStackSlots      int     `toml:"max_stack_slots"`
		GCGrowthFactor     float64 `toml:"gc_growth_factor"`
		InitialGCThreshold int     `toml:"initial_gc_threshold"`
		InstructionLimit   int     `toml:"instruction_limit"`
	} `toml:"vm"`
}

// Load decodes path into a vm.Config, filling any field left at its TOML
// zero value from vm.DefaultConfig().
func Load(path string) (vm.Config, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return vm.Config{}, err
	}
	return merge(f), nil
}

// Parse decodes TOML content already in memory, for callers embedding a
// default configuration rather than reading one from disk.
func Parse(content string) (vm.Config, error) {
	var f File
	if _, err := toml.Decode(content, &f); err != nil {
		return vm.Config{}, err
	}
	return merge(f), nil
}

func merge(f File) vm.Config {
	cfg := vm.DefaultConfig()
	if f.VM.MaxFrames > 0 {
		cfg.MaxFrames = f.VM.MaxFrames
	}
	if f.VM.MaxStackSlots > 0 {
		cfg.MaxStackSlots = f.VM.MaxStackSlots
	}
	if f.VM.GCGrowthFactor > 0 {
		cfg.GCGrowthFactor = f.VM.GCGrowthFactor
	}
	if f.VM.InitialGCThreshold > 0 {
		cfg.InitialGCThreshold = f.VM.InitialGCThreshold
	}
	if f.VM.InstructionLimit > 0 {
		cfg.InstructionLimit = f.VM.InstructionLimit
	}
	return cfg
}
