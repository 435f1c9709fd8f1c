// Package config loads host-configurable VM resource limits (spec.md §5:
// "The host may set a maximum call depth and a maximum operand-stack depth;
// exceeding either raises a fatal"). The teacher hardcodes these inline in
// vm.go; this pulls them into a loadable document instead.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// VMLimits bounds the two resources spec.md §5 calls out explicitly.
type VMLimits struct {
	MaxCallDepth    int `yaml:"max_call_depth"`
	MaxStackDepth   int `yaml:"max_stack_depth"`
}

// Config is the root document; today it only carries VM limits, but keeping
// it as its own top-level key leaves room for sibling sections (e.g. a
// future builtin-table source list) without breaking existing documents.
type Config struct {
	VM VMLimits `yaml:"vm"`
}

// Default mirrors the limits the teacher's VM hardcodes, used whenever no
// config file is supplied.
func Default() *Config {
	return &Config{
		VM: VMLimits{
			MaxCallDepth:  2048,
			MaxStackDepth: 65536,
		},
	}
}

// Load reads and parses a YAML config file, filling any field the document
// omits from Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.VM.MaxCallDepth <= 0 {
		cfg.VM.MaxCallDepth = Default().VM.MaxCallDepth
	}
	if cfg.VM.MaxStackDepth <= 0 {
		cfg.VM.MaxStackDepth = Default().VM.MaxStackDepth
	}
	return cfg, nil
}
