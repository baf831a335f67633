package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/patham9/YAN/internal/truth"
)

// Config holds every tunable of the reasoner. It is built once at start-up
// and passed to each component; nothing reads configuration from globals.
type Config struct {
	Truth   TruthConfig   `toml:"truth"`
	Memory  MemoryConfig  `toml:"memory"`
	Print   PrintConfig   `toml:"print"`
	Server  ServerConfig  `toml:"server"`
	Journal JournalConfig `toml:"journal"`
}

type TruthConfig struct {
	EvidentialHorizon    float64 `toml:"evidential_horizon"`
	ProjectionDecay      float64 `toml:"projection_decay"`
	MaxConfidence        float64 `toml:"max_confidence"`
	StructuralFrequency  float64 `toml:"structural_frequency"`
	StructuralConfidence float64 `toml:"structural_confidence"`
}

type MemoryConfig struct {
	MinConfidence          float64 `toml:"min_confidence"`
	MinPriority            float64 `toml:"min_priority"`
	EventDurabilityOnUsage float64 `toml:"event_durability_on_usage"`
	ConceptsMax            int     `toml:"concepts_max"`
	CyclingEventsMax       int     `toml:"cycling_events_max"`
	FIFOSize               int     `toml:"fifo_size"`
	TableSize              int     `toml:"table_size"`
	OperationsMax          int     `toml:"operations_max"`
	EventSelections        int     `toml:"event_selections"`
}

type PrintConfig struct {
	Input             bool    `toml:"input"`
	Derivations       bool    `toml:"derivations"`
	PriorityThreshold float64 `toml:"priority_threshold"`
	JSON              bool    `toml:"json"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type JournalConfig struct {
	Path    string `toml:"path"` // resolved at runtime via store.DefaultDBPath() when empty
	Enabled bool   `toml:"enabled"`
}

// Default returns a Config with the reference parameters.
func Default() Config {
	return Config{
		Truth: TruthConfig{
			EvidentialHorizon:    1.0,
			ProjectionDecay:      0.8,
			MaxConfidence:        0.99,
			StructuralFrequency:  1.0,
			StructuralConfidence: 0.9,
		},
		Memory: MemoryConfig{
			MinConfidence:          0.01,
			MinPriority:            0.001,
			EventDurabilityOnUsage: 0.9,
			ConceptsMax:            4096,
			CyclingEventsMax:       400,
			FIFOSize:               20,
			TableSize:              20,
			OperationsMax:          10,
			EventSelections:        10,
		},
		Print: PrintConfig{
			Input:       true,
			Derivations: false,
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default value; a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parsing config TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate rejects parameter values the calculus or the bounded stores
// cannot work with.
func (c *Config) Validate() error {
	t := c.Truth
	if t.EvidentialHorizon <= 0 {
		return fmt.Errorf("truth.evidential_horizon must be positive, got %v", t.EvidentialHorizon)
	}
	if t.ProjectionDecay <= 0 || t.ProjectionDecay > 1 {
		return fmt.Errorf("truth.projection_decay must be in (0,1], got %v", t.ProjectionDecay)
	}
	if t.MaxConfidence <= 0 || t.MaxConfidence >= 1 {
		return fmt.Errorf("truth.max_confidence must be in (0,1), got %v", t.MaxConfidence)
	}
	m := c.Memory
	if m.MinConfidence < 0 || m.MinConfidence >= 1 {
		return fmt.Errorf("memory.min_confidence must be in [0,1), got %v", m.MinConfidence)
	}
	capacities := []struct {
		name  string
		value int
	}{
		{"memory.concepts_max", m.ConceptsMax},
		{"memory.cycling_events_max", m.CyclingEventsMax},
		{"memory.fifo_size", m.FIFOSize},
		{"memory.table_size", m.TableSize},
		{"memory.operations_max", m.OperationsMax},
		{"memory.event_selections", m.EventSelections},
	}
	for _, cp := range capacities {
		if cp.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", cp.name, cp.value)
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// Calculus returns the truth calculus for these parameters.
func (c *Config) Calculus() truth.Calculus {
	return truth.Calculus{
		Horizon:         c.Truth.EvidentialHorizon,
		ProjectionDecay: c.Truth.ProjectionDecay,
		MaxConfidence:   c.Truth.MaxConfidence,
		Structural: truth.Truth{
			Frequency:  c.Truth.StructuralFrequency,
			Confidence: c.Truth.StructuralConfidence,
		},
	}
}
