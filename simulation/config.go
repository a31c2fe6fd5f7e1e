package simulation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kprusa/adupsim/router"
)

// Config is the process-wide, all-overridable-before-Run record from
// spec.md §6: the router protocol defaults plus the one simulation-level
// knob (the seed for the single shared PRNG, §9).
type Config struct {
	Router router.Config `yaml:",inline"`
	Seed   int64         `yaml:"seed"`
}

// DefaultConfig returns the exact defaults from spec.md §6, with the
// canonical custom-topology seed (42, per spec.md §4.5).
func DefaultConfig() Config {
	return Config{Router: router.DefaultConfig(), Seed: 42}
}

// WithDefaults fills zero-valued fields of c from DefaultConfig, so a
// partially specified override (including a zero-value Config{})
// resolves to the exact spec defaults wherever a field was left unset.
func (c Config) WithDefaults() Config {
	c.Router = c.Router.WithDefaults()
	if c.Seed == 0 {
		c.Seed = DefaultConfig().Seed
	}
	return c
}

// LoadConfig reads and parses a YAML config file, applying defaults to
// any field the file leaves unset. Mirrors the pack's own
// LoadXConfig(path) → read file → yaml.Unmarshal → defaulting pattern.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("simulation: read config file %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("simulation: parse config YAML: %w", err)
	}

	return c.WithDefaults(), nil
}

// Save writes c to path as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("simulation: marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("simulation: write config file %s: %w", path, err)
	}
	return nil
}
