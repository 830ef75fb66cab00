// Package config reads and writes YAML scene descriptions.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/demsim/internal/accum"
	"github.com/san-kum/demsim/internal/contact"
	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/geometry"
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/vecmath"
)

type Vec3 = vecmath.Vec3

const (
	DefaultTimeStep   = 1e-5
	DefaultEndTime    = 0.05
	DefaultSaveStep   = 1e-3
	DefaultWorkers    = 4
	DefaultIntegrator = "leapfrog"
	DefaultMode       = "scalar"
	DefaultBackend    = "auto"
)

type Config struct {
	Simulation   SimulationConfig    `yaml:"simulation"`
	Gravity      Vec3                `yaml:"gravity"`
	PBC          PBCConfig           `yaml:"pbc,omitempty"`
	Models       ModelsConfig        `yaml:"models"`
	Materials    []scene.Material    `yaml:"materials"`
	Interactions []InteractionConfig `yaml:"interactions"`
	Particles    []ParticleConfig    `yaml:"particles,omitempty"`
	Packings     []PackingConfig     `yaml:"packings,omitempty"`
	Geometries   []GeometryConfig    `yaml:"geometries,omitempty"`
}

type SimulationConfig struct {
	TimeStep      float64    `yaml:"time_step"`
	EndTime       float64    `yaml:"end_time"`
	SaveStep      float64    `yaml:"save_step"`
	Workers       int        `yaml:"workers"`
	ValidateState bool       `yaml:"validate_state"`
	Integrator    string     `yaml:"integrator"`
	Mode          string     `yaml:"mode"`
	Consolidation accum.Mode `yaml:"consolidation"`
	Backend       string     `yaml:"backend"`
	ContactMargin float64    `yaml:"contact_margin,omitempty"`
}

type PBCConfig struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
	X   bool `yaml:"x"`
	Y   bool `yaml:"y"`
	Z   bool `yaml:"z"`
}

// ModelConfig selects a contact law by key or name.
type ModelConfig struct {
	Key    string             `yaml:"key"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

type ModelsConfig struct {
	PP ModelConfig `yaml:"pp"`
	PW ModelConfig `yaml:"pw"`
}

type InteractionConfig struct {
	A                  string `yaml:"a"`
	B                  string `yaml:"b"`
	scene.PairFriction `yaml:",inline"`
}

type ParticleConfig struct {
	Coord    Vec3    `yaml:"coord"`
	Vel      Vec3    `yaml:"vel,omitempty"`
	AnglVel  Vec3    `yaml:"angl_vel,omitempty"`
	Radius   float64 `yaml:"radius"`
	Material string  `yaml:"material"`
}

// PackingConfig generates a regular block of particles.
type PackingConfig struct {
	Material string  `yaml:"material"`
	Radius   float64 `yaml:"radius"`
	Origin   Vec3    `yaml:"origin"`
	Count    [3]int  `yaml:"count"`
	// Spacing between neighbouring centers; defaults to 2.2 radii.
	Spacing float64 `yaml:"spacing,omitempty"`
	Vel     Vec3    `yaml:"vel,omitempty"`
	// Jitter displaces each center randomly by up to this fraction of the radius.
	Jitter float64 `yaml:"jitter,omitempty"`
	Seed   int64   `yaml:"seed,omitempty"`
}

type GeometryConfig struct {
	Name     string          `yaml:"name"`
	Shape    geometry.Shape  `yaml:"shape"`
	Sizes    geometry.Sizes  `yaml:"sizes"`
	Center   Vec3            `yaml:"center"`
	Material string          `yaml:"material"`
	Color    string          `yaml:"color,omitempty"`
	Accuracy int             `yaml:"accuracy,omitempty"`
	Scale    float64         `yaml:"scale,omitempty"`
	Rotation Vec3            `yaml:"rotation,omitempty"`
	Motion   geometry.Motion `yaml:"motion,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TimeStep:      DefaultTimeStep,
			EndTime:       DefaultEndTime,
			SaveStep:      DefaultSaveStep,
			Workers:       DefaultWorkers,
			ValidateState: true,
			Integrator:    DefaultIntegrator,
			Mode:          DefaultMode,
			Consolidation: accum.ModeAtomic,
			Backend:       DefaultBackend,
		},
		Gravity: Vec3{0, 0, -9.81},
		Models: ModelsConfig{
			PP: ModelConfig{Key: contact.KeyPPHertzMindlin},
			PW: ModelConfig{Key: contact.KeyPWPopovJKR},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate performs the checks that need no model or material lookup.
func (c *Config) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), dynamo.ErrInvalidParameter)
	}
	s := c.Simulation
	if s.TimeStep <= 0 {
		return bad("time_step must be positive, got %g", s.TimeStep)
	}
	if s.EndTime <= 0 {
		return bad("end_time must be positive, got %g", s.EndTime)
	}
	if s.SaveStep < s.TimeStep {
		return bad("save_step %g is below time_step %g", s.SaveStep, s.TimeStep)
	}
	if len(c.Materials) == 0 {
		return bad("no materials defined")
	}
	for _, m := range c.Materials {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	for i, p := range c.Particles {
		if p.Radius <= 0 {
			return bad("particle %d: radius must be positive", i)
		}
	}
	for i, p := range c.Packings {
		if p.Radius <= 0 || p.Count[0] < 0 || p.Count[1] < 0 || p.Count[2] < 0 {
			return bad("packing %d: radius and counts must be positive", i)
		}
		if p.Spacing != 0 && p.Spacing < 2*p.Radius {
			return bad("packing %d: spacing %g makes particles overlap", i, p.Spacing)
		}
	}
	return nil
}

// DynamoConfig converts the simulation block into run parameters.
func (c *Config) DynamoConfig() dynamo.Config {
	return dynamo.Config{
		TimeStep:      c.Simulation.TimeStep,
		EndTime:       c.Simulation.EndTime,
		SaveStep:      c.Simulation.SaveStep,
		Workers:       c.Simulation.Workers,
		ValidateState: c.Simulation.ValidateState,
	}
}

// PeriodicBox returns the configured periodic boundaries or nil.
func (c *Config) PeriodicBox() dynamo.PBC {
	if !c.PBC.X && !c.PBC.Y && !c.PBC.Z {
		return nil
	}
	return scene.PeriodicBox{Min: c.PBC.Min, Max: c.PBC.Max, X: c.PBC.X, Y: c.PBC.Y, Z: c.PBC.Z}
}

// ParticleCount is the number of particles the scene will create.
func (c *Config) ParticleCount() int {
	n := len(c.Particles)
	for _, p := range c.Packings {
		n += p.Count[0] * p.Count[1] * p.Count[2]
	}
	return n
}
