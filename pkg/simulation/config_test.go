package simulation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestDefaultConfig_BoundsExportedFrames(t *testing.T) {
	c := DefaultConfig()
	captured := c.MaxTicks/c.FrameEvery + 1
	if captured > 2*c.GIFMaxFrames {
		t.Errorf("default run captures %d frames for a %d frame gif", captured, c.GIFMaxFrames)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"Zero grid", func(c *Config) { c.GridSize = 0 }, "gridSize"},
		{"Empty population", func(c *Config) { c.PopulationSize = 0 }, "populationSize"},
		{"Negative crisis radius", func(c *Config) { c.CrisisRadius = -1 }, "crisisRadius"},
		{"Zero safe radius", func(c *Config) { c.SafeRadius = 0 }, "safeRadius"},
		{"Negative noise", func(c *Config) { c.NoiseStrength = -0.1 }, "noiseStrength"},
		{"Zero max ticks", func(c *Config) { c.MaxTicks = 0 }, "maxTicks"},
		{"Single frame gif", func(c *Config) { c.GIFMaxFrames = 1 }, "gifMaxFrames"},
		{"No ranges", func(c *Config) { c.CrisisRanges = nil }, "crisisRanges"},
		{"Inverted range", func(c *Config) { c.CrisisRanges = []Range{{MinX: 60, MaxX: 40, MinY: 0, MaxY: 10}} }, "crisisRanges[0]"},
		{"Range outside grid", func(c *Config) { c.CrisisRanges = []Range{{MinX: 0, MaxX: 140, MinY: 0, MaxY: 10}} }, "crisisRanges[0]"},
		{"Neighbor bounds", func(c *Config) { c.MinNeighbors, c.MaxNeighbors = 3, 2 }, "minNeighbors"},
		{"Flat projection", func(c *Config) { c.Projection.LonScale = 0 }, "projection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() = %v; want ConfigurationError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q; want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestParseConfig_JSONOverlaysDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"populationSize": 120, "noiseStrength": 0, "seed": 7}`), false)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.PopulationSize != 120 || cfg.NoiseStrength != 0 || cfg.Seed != 7 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.GridSize != 100 || len(cfg.CrisisRanges) != 2 {
		t.Errorf("defaults lost: grid=%v ranges=%d", cfg.GridSize, len(cfg.CrisisRanges))
	}
}

func TestParseConfig_YAML(t *testing.T) {
	doc := `
gridSize: 200
populationSize: 50
crisisRanges:
  - {minX: 10, maxX: 20, minY: 10, maxY: 20}
projection:
  baseLon: 5
  baseLat: 8
  lonScale: 9
  latScale: 10
`
	cfg, err := ParseConfig([]byte(doc), true)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.GridSize != 200 || cfg.PopulationSize != 50 {
		t.Errorf("values not applied: %+v", cfg)
	}
	if len(cfg.CrisisRanges) != 1 || cfg.CrisisRanges[0].MaxX != 20 {
		t.Errorf("ranges = %+v", cfg.CrisisRanges)
	}
	if cfg.Projection.BaseLon != 5 || cfg.Projection.LatScale != 10 {
		t.Errorf("projection = %+v", cfg.Projection)
	}
}

func TestParseConfig_SchemaRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Unknown field", `{"speed": 3}`},
		{"Wrong type", `{"populationSize": "many"}`},
		{"Negative population", `{"populationSize": -1}`},
		{"Fractional ticks", `{"maxTicks": 2.5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc), false)
			if err == nil || !strings.Contains(err.Error(), "config validation failed") {
				t.Errorf("ParseConfig(%s) err = %v; want schema failure", tt.doc, err)
			}
		})
	}
}

func TestLoadConfig_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "sim.yaml")
	if err := os.WriteFile(yamlPath, []byte("populationSize: 33\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(yamlPath)
	if err != nil {
		t.Fatalf("LoadConfig(yaml): %v", err)
	}
	if cfg.PopulationSize != 33 {
		t.Errorf("populationSize = %d; want 33", cfg.PopulationSize)
	}

	jsonPath := filepath.Join(dir, "sim.json")
	if err := os.WriteFile(jsonPath, []byte(`{"maxTicks": 12}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(jsonPath)
	if err != nil {
		t.Fatalf("LoadConfig(json): %v", err)
	}
	if cfg.MaxTicks != 12 {
		t.Errorf("maxTicks = %d; want 12", cfg.MaxTicks)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfig_ShippedSamples(t *testing.T) {
	yamlCfg, err := LoadConfig(filepath.Join("..", "..", "configs", "simulation.yaml"))
	if err != nil {
		t.Fatalf("simulation.yaml: %v", err)
	}
	def := DefaultConfig()
	if yamlCfg.PopulationSize != def.PopulationSize || yamlCfg.Projection != def.Projection || len(yamlCfg.CrisisRanges) != 2 {
		t.Errorf("simulation.yaml drifted from the defaults: %+v", yamlCfg)
	}

	quick, err := LoadConfig(filepath.Join("..", "..", "configs", "quick.json"))
	if err != nil {
		t.Fatalf("quick.json: %v", err)
	}
	if quick.PopulationSize != 120 || quick.Seed != 7 || quick.GridSize != def.GridSize {
		t.Errorf("quick.json = %+v", quick)
	}
}
