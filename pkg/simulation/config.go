package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geo"
)

//go:embed config.schema.json
var configSchema string

const configSchemaURL = "crisisflight://config.schema.json"

// Range is an axis-aligned rectangle of the domain, used to place crisis centers.
type Range struct {
	MinX float64 `json:"minX" yaml:"minX"`
	MaxX float64 `json:"maxX" yaml:"maxX"`
	MinY float64 `json:"minY" yaml:"minY"`
	MaxY float64 `json:"maxY" yaml:"maxY"`
}

type Config struct {
	// Domain
	GridSize float64 `json:"gridSize" yaml:"gridSize"`

	// Population
	PopulationSize int `json:"populationSize" yaml:"populationSize"`

	// Zones
	CrisisRadius float64 `json:"crisisRadius" yaml:"crisisRadius"`
	SafeRadius   float64 `json:"safeRadius" yaml:"safeRadius"`
	CrisisRanges []Range `json:"crisisRanges" yaml:"crisisRanges"`

	// Forces
	RepulsionStrength  float64 `json:"repulsionStrength" yaml:"repulsionStrength"`
	AttractionStrength float64 `json:"attractionStrength" yaml:"attractionStrength"`
	NoiseStrength      float64 `json:"noiseStrength" yaml:"noiseStrength"`

	// Termination
	StopThreshold float64 `json:"stopThreshold" yaml:"stopThreshold"`
	MaxTicks      int     `json:"maxTicks" yaml:"maxTicks"`

	// Output
	FrameRate    int `json:"frameRate" yaml:"frameRate"`       // frames per second of exported animations
	FrameEvery   int `json:"frameEvery" yaml:"frameEvery"`     // capture one frame every N ticks
	GIFMaxFrames int `json:"gifMaxFrames" yaml:"gifMaxFrames"` // longer GIFs are decimated down to this

	// Randomness
	Seed uint64 `json:"seed" yaml:"seed"`

	// Safe zone generation
	Projection   geo.Projection `json:"projection" yaml:"projection"`
	MinNeighbors int            `json:"minNeighbors" yaml:"minNeighbors"`
	MaxNeighbors int            `json:"maxNeighbors" yaml:"maxNeighbors"`
}

func DefaultConfig() *Config {
	return &Config{
		GridSize:       100,
		PopulationSize: 500,
		CrisisRadius:   2,
		SafeRadius:     2,
		CrisisRanges: []Range{
			{MinX: 20, MaxX: 80, MinY: 20, MaxY: 80},
			{MinX: 40, MaxX: 60, MinY: 40, MaxY: 60},
		},
		RepulsionStrength:  0.1,
		AttractionStrength: 0.05,
		NoiseStrength:      0.02,
		StopThreshold:      1e-2,
		MaxTicks:           2000,
		FrameRate:          10,
		FrameEvery:         10,
		GIFMaxFrames:       200,
		Seed:               42,
		Projection:         geo.DefaultProjection(),
		MinNeighbors:       1,
		MaxNeighbors:       2,
	}
}

// Forces returns the force constants as behavior settings.
func (c *Config) Forces() behavior.Settings {
	return behavior.Settings{
		RepulsionStrength:  c.RepulsionStrength,
		AttractionStrength: c.AttractionStrength,
	}
}

// Validate checks the values the schema cannot express on its own.
func (c *Config) Validate() error {
	switch {
	case c.GridSize <= 0:
		return configErrorf("gridSize", "must be > 0, got %v", c.GridSize)
	case c.PopulationSize <= 0:
		return configErrorf("populationSize", "must be > 0, got %d", c.PopulationSize)
	case c.CrisisRadius <= 0:
		return configErrorf("crisisRadius", "must be > 0, got %v", c.CrisisRadius)
	case c.SafeRadius <= 0:
		return configErrorf("safeRadius", "must be > 0, got %v", c.SafeRadius)
	case c.NoiseStrength < 0:
		return configErrorf("noiseStrength", "must be >= 0, got %v", c.NoiseStrength)
	case c.StopThreshold <= 0:
		return configErrorf("stopThreshold", "must be > 0, got %v", c.StopThreshold)
	case c.MaxTicks <= 0:
		return configErrorf("maxTicks", "must be > 0, got %d", c.MaxTicks)
	case c.FrameRate <= 0:
		return configErrorf("frameRate", "must be > 0, got %d", c.FrameRate)
	case c.FrameEvery <= 0:
		return configErrorf("frameEvery", "must be > 0, got %d", c.FrameEvery)
	case c.GIFMaxFrames < 2:
		return configErrorf("gifMaxFrames", "must be >= 2, got %d", c.GIFMaxFrames)
	case len(c.CrisisRanges) == 0:
		return configErrorf("crisisRanges", "at least one range is required")
	case c.MinNeighbors < 1 || c.MaxNeighbors < c.MinNeighbors:
		return configErrorf("minNeighbors", "need 1 <= minNeighbors <= maxNeighbors, got %d..%d", c.MinNeighbors, c.MaxNeighbors)
	}
	for i, r := range c.CrisisRanges {
		if r.MinX > r.MaxX || r.MinY > r.MaxY {
			return configErrorf(fmt.Sprintf("crisisRanges[%d]", i), "min must not exceed max")
		}
		if r.MinX < 0 || r.MinY < 0 || r.MaxX > c.GridSize || r.MaxY > c.GridSize {
			return configErrorf(fmt.Sprintf("crisisRanges[%d]", i), "must lie inside [0, %v]", c.GridSize)
		}
	}
	if err := c.Projection.Validate(); err != nil {
		return configErrorf("projection", "%v", err)
	}
	return nil
}

// LoadConfig loads configuration from a JSON or YAML file, validates it
// against the embedded schema and overlays it on DefaultConfig.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(configFile))
	return ParseConfig(b, ext == ".yaml" || ext == ".yml")
}

// ParseConfig decodes raw bytes (YAML when isYAML is set, JSON otherwise).
func ParseConfig(data []byte, isYAML bool) (*Config, error) {
	// 1. Normalize to JSON
	if isYAML {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
		j, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to convert config yaml to json: %w", err)
		}
		data = j
	}

	// 2. Compile Schema
	sch, err := jsonschema.CompileString(configSchemaURL, configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 3. Validate
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
