// Package config loads and validates run configuration for the
// particle-mesh driver. Defaults are embedded; a YAML file overlays
// them.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/notargets/pmesh/spectral"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all driver configuration parameters.
type Config struct {
	BoxSize   float64 `yaml:"box_size"`
	Nmesh     int     `yaml:"nmesh"`
	Precision string  `yaml:"precision"` // f4 or f8

	// ProcessMesh is the 2-D rank grid shape; empty requests the
	// automatic near-square split.
	ProcessMesh []int `yaml:"process_mesh,omitempty"`

	Verbose   bool   `yaml:"verbose"`
	OutputDir string `yaml:"output_dir"`

	Particles ParticleConfig `yaml:"particles"`
	Chains    []ChainConfig  `yaml:"chains"`

	// Derived values computed by Validate.
	Derived DerivedConfig `yaml:"-"`
}

// ParticleConfig describes the synthetic particle load.
type ParticleConfig struct {
	Count int     `yaml:"count"`
	Seed  int64   `yaml:"seed"`
	Mass  float64 `yaml:"mass"`
}

// ChainConfig names one transfer chain to run through C2R.
type ChainConfig struct {
	Name    string         `yaml:"name"`
	Filters []FilterConfig `yaml:"filters"`
}

// FilterConfig selects one stock transfer function.
type FilterConfig struct {
	Type   string  `yaml:"type"`             // identity, remove_dc, gaussian, sharp_k
	Radius float64 `yaml:"radius,omitempty"` // gaussian smoothing scale
	KMax   float64 `yaml:"kmax,omitempty"`   // sharp_k cutoff
}

// DerivedConfig holds values computed from the raw fields.
type DerivedConfig struct {
	DataType spectral.DataType
}

// Load reads configuration: embedded defaults first, then the YAML
// file at path if non-empty, then validation.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and fills derived values.
func (c *Config) Validate() error {
	if c.BoxSize <= 0 {
		return fmt.Errorf("box_size must be positive, got %g", c.BoxSize)
	}
	if c.Nmesh < 2 {
		return fmt.Errorf("nmesh must be at least 2, got %d", c.Nmesh)
	}
	dt, err := spectral.ParseDataType(c.Precision)
	if err != nil {
		return err
	}
	c.Derived.DataType = dt

	switch len(c.ProcessMesh) {
	case 0:
	case 2:
		if c.ProcessMesh[0] < 1 || c.ProcessMesh[1] < 1 {
			return fmt.Errorf("process_mesh extents must be positive, got %v", c.ProcessMesh)
		}
	default:
		return fmt.Errorf("process_mesh must have exactly 2 entries, got %d", len(c.ProcessMesh))
	}

	if c.Particles.Count < 0 {
		return fmt.Errorf("particles.count must be non-negative, got %d", c.Particles.Count)
	}
	if c.Particles.Mass <= 0 {
		return fmt.Errorf("particles.mass must be positive, got %g", c.Particles.Mass)
	}

	for _, ch := range c.Chains {
		for _, f := range ch.Filters {
			switch f.Type {
			case "identity", "remove_dc":
			case "gaussian":
				if f.Radius <= 0 {
					return fmt.Errorf("chain %q: gaussian filter needs a positive radius", ch.Name)
				}
			case "sharp_k":
				if f.KMax <= 0 {
					return fmt.Errorf("chain %q: sharp_k filter needs a positive kmax", ch.Name)
				}
			default:
				return fmt.Errorf("chain %q: unknown filter type %q", ch.Name, f.Type)
			}
		}
	}
	return nil
}

// ProcMesh returns the process-mesh shape in the form the mesh
// constructor expects, nil when automatic.
func (c *Config) ProcMesh() *[2]int {
	if len(c.ProcessMesh) != 2 {
		return nil
	}
	return &[2]int{c.ProcessMesh[0], c.ProcessMesh[1]}
}
