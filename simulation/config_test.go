package simulation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_MatchesKnownDefaults(t *testing.T) {
	c := DefaultConfig()
	if c.Seed != 42 {
		t.Fatalf("Seed = %d, want 42", c.Seed)
	}
	if c.Router.HelloInterval == 0 {
		t.Fatal("Router defaults were not populated")
	}
}

func TestConfig_WithDefaultsFillsZeroSeed(t *testing.T) {
	c := Config{}.WithDefaults()
	if c.Seed != DefaultConfig().Seed {
		t.Fatalf("Seed = %d, want %d", c.Seed, DefaultConfig().Seed)
	}
}

func TestConfig_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	want := DefaultConfig()
	want.Seed = 7

	if err := want.Save(path); err != nil {
		t.Fatalf("Save() error: %s", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %s", err)
	}
	if got.Seed != 7 {
		t.Fatalf("loaded Seed = %d, want 7", got.Seed)
	}
	if got.Router.HelloInterval != want.Router.HelloInterval {
		t.Fatalf("loaded HelloInterval = %v, want %v", got.Router.HelloInterval, want.Router.HelloInterval)
	}
}

func TestLoadConfig_PartialOverrideKeepsOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	if err := os.WriteFile(path, []byte("seed: 99\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %s", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %s", err)
	}
	if got.Seed != 99 {
		t.Fatalf("Seed = %d, want 99", got.Seed)
	}
	if got.Router.HelloInterval != DefaultConfig().Router.HelloInterval {
		t.Fatal("partial override clobbered an unset field instead of defaulting it")
	}
}

func TestLoadConfig_MissingFileReturnsError(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadConfig() on a missing file succeeded, want error")
	}
}
