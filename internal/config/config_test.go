package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yan.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.ListenAddr() != "127.0.0.1:37778" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr())
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := writeConfig(t, `
[truth]
projection_decay = 0.5

[memory]
concepts_max = 16

[print]
derivations = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Truth.ProjectionDecay != 0.5 {
		t.Errorf("ProjectionDecay = %v, want 0.5", cfg.Truth.ProjectionDecay)
	}
	if cfg.Memory.ConceptsMax != 16 {
		t.Errorf("ConceptsMax = %d, want 16", cfg.Memory.ConceptsMax)
	}
	if !cfg.Print.Derivations {
		t.Error("Derivations not enabled")
	}
	if cfg.Truth.EvidentialHorizon != 1.0 || cfg.Memory.FIFOSize != 20 || !cfg.Print.Input {
		t.Errorf("untouched keys lost their defaults: %+v", cfg)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "[memory]\nconcept_max = 3\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "concept_max") {
		t.Errorf("Load error = %v, want unknown key", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"decay zero":      "[truth]\nprojection_decay = 0.0\n",
		"decay above one": "[truth]\nprojection_decay = 1.5\n",
		"confidence cap":  "[truth]\nmax_confidence = 1.0\n",
		"horizon":         "[truth]\nevidential_horizon = -1.0\n",
		"capacity":        "[memory]\ntable_size = 0\n",
		"min confidence":  "[memory]\nmin_confidence = 1.0\n",
		"bad toml":        "[truth\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Memory.ConceptsMax = 99
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Load(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestCalculus(t *testing.T) {
	cfg := Default()
	c := cfg.Calculus()
	if c.Horizon != 1 || c.ProjectionDecay != 0.8 || c.MaxConfidence != 0.99 {
		t.Errorf("Calculus = %+v", c)
	}
	if c.Structural.Frequency != 1 || c.Structural.Confidence != 0.9 {
		t.Errorf("Structural = %+v", c.Structural)
	}
}
