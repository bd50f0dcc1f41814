package vellum

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EntityUpdateTiming controls when a World's Run loop flushes staged
// entity mutations relative to each schedule (spec.md §4.12, §6).
type EntityUpdateTiming string

const (
	// FlushBefore flushes staged mutations before every schedule runs.
	FlushBefore EntityUpdateTiming = "before"
	// FlushAfter flushes staged mutations after every schedule runs. This
	// is the default (spec.md §6: "entityUpdateTiming = after").
	FlushAfter EntityUpdateTiming = "after"
	// FlushCustom disables implicit flushing entirely; the caller must
	// call World.Flush itself at whatever points it chooses.
	FlushCustom EntityUpdateTiming = "custom"
)

// WorldConfig holds a World's tunable construction-time options (spec.md
// §6's world configuration keys).
type WorldConfig struct {
	// EntityUpdateTiming selects when Run implicitly flushes. Defaults to
	// FlushAfter if left empty.
	EntityUpdateTiming EntityUpdateTiming `yaml:"entityUpdateTiming"`

	// CreateWorker is an opaque hook the core never exercises itself
	// (spec.md §6: "createWorker; opaque; not exercised by the core"),
	// retained only so callers configuring a World from a shared config
	// file don't need a separate struct for this one extra key.
	CreateWorker any `yaml:"-"`
}

// DefaultWorldConfig returns the zero-value-safe default configuration.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{EntityUpdateTiming: FlushAfter}
}

func (c *WorldConfig) normalize() {
	if c.EntityUpdateTiming == "" {
		c.EntityUpdateTiming = FlushAfter
	}
}

// LoadWorldConfig reads a YAML-encoded WorldConfig from path. CreateWorker
// is never populated this way since it carries a runtime value, not
// serialized configuration.
func LoadWorldConfig(path string) (*WorldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vellum: load world config: %w", err)
	}
	cfg := DefaultWorldConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("vellum: load world config: parse %s: %w", path, err)
	}
	cfg.normalize()
	return &cfg, nil
}
