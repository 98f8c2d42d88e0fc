package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/rerank"
)

func TestParseEngineConfig_Defaults(t *testing.T) {
	cfg, err := ParseEngineConfig([]byte(""))
	if err != nil {
		t.Fatalf("ParseEngineConfig failed: %v", err)
	}
	def := core.DefaultEngineConfig()
	if cfg != def {
		t.Errorf("empty yaml should yield defaults:\ngot  %+v\nwant %+v", cfg, def)
	}
}

func TestParseEngineConfig_Overrides(t *testing.T) {
	cfg, err := ParseEngineConfig([]byte("factors: 16\nsolver: als\ndefault_weight: 0.7\n"))
	if err != nil {
		t.Fatalf("ParseEngineConfig failed: %v", err)
	}
	if cfg.Factors != 16 {
		t.Errorf("Factors = %d, want 16", cfg.Factors)
	}
	if cfg.Solver != "als" {
		t.Errorf("Solver = %q, want als", cfg.Solver)
	}
	if cfg.DefaultWeight != 0.7 {
		t.Errorf("DefaultWeight = %f, want 0.7", cfg.DefaultWeight)
	}
	// untouched fields keep defaults
	if cfg.Epochs != core.DefaultEngineConfig().Epochs {
		t.Errorf("Epochs = %d, want default", cfg.Epochs)
	}
}

func TestParseEngineConfig_Invalid(t *testing.T) {
	for _, tt := range []struct {
		name string
		yaml string
	}{
		{"bad solver", "solver: newton\n"},
		{"inverted weight bounds", "min_weight: 0.8\nmax_weight: 0.2\n"},
		{"malformed yaml", "factors: [\n"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEngineConfig([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadEngineConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("epochs: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig failed: %v", err)
	}
	if cfg.Epochs != 5 {
		t.Errorf("Epochs = %d, want 5", cfg.Epochs)
	}

	if _, err := LoadEngineConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRegistry(t *testing.T) {
	Register("test.noop", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rerank.TopNNode{N: 1}, nil
	})

	found := false
	for _, typ := range SupportedTypes() {
		if typ == "test.noop" {
			found = true
		}
	}
	if !found {
		t.Fatalf("SupportedTypes missing test.noop: %v", SupportedTypes())
	}

	var cfg pipeline.Config
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "test.noop"}}
	if err := ValidatePipelineConfig(&cfg); err != nil {
		t.Errorf("registered type rejected: %v", err)
	}
	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pipeline.NodeConfig{Type: "no.such.node"})
	if err := ValidatePipelineConfig(&cfg); err == nil {
		t.Error("unregistered type accepted")
	}
}
