package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/geometry"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Simulation.Integrator != "leapfrog" {
		t.Errorf("expected integrator leapfrog, got %s", cfg.Simulation.Integrator)
	}
	if cfg.Simulation.TimeStep <= 0 {
		t.Error("time step should be positive")
	}
	if cfg.Models.PW.Key != "5048D3D96D3843949F5B427DF9FCCEDF" {
		t.Errorf("unexpected default wall model %s", cfg.Models.PW.Key)
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
		if cfg.ParticleCount() == 0 {
			t.Errorf("preset %s has no particles", name)
		}
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAreIndependent(t *testing.T) {
	a := GetPreset("settle")
	a.Packings[0].Radius = 1
	if b := GetPreset("settle"); b.Packings[0].Radius == 1 {
		t.Error("presets share state")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
simulation:
  time_step: 2e-6
  end_time: 0.01
  mode: batched
gravity: [0, 0, -1]
materials:
  - {key: glass, density: 2500, young_modulus: 1e7, poisson_ratio: 0.25}
interactions:
  - {a: glass, b: glass, restitution: 0.5, sliding_friction: 0.3}
geometries:
  - name: floor
    shape: box
    sizes: {width: 1, depth: 1, height: 0.1}
    material: glass
    motion:
      intervals:
        - {time_beg: 0, time_end: 1, velocity: [0, 0, 0.1]}
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Simulation.TimeStep != 2e-6 || cfg.Simulation.Mode != "batched" {
		t.Errorf("simulation = %+v", cfg.Simulation)
	}
	// unset fields keep their defaults
	if cfg.Simulation.Integrator != DefaultIntegrator {
		t.Errorf("integrator = %q", cfg.Simulation.Integrator)
	}
	if cfg.Gravity != (Vec3{0, 0, -1}) {
		t.Errorf("gravity = %v", cfg.Gravity)
	}
	if cfg.Interactions[0].SlidingFriction != 0.3 {
		t.Errorf("interaction = %+v", cfg.Interactions[0])
	}
	g := cfg.Geometries[0]
	if g.Shape != geometry.Box || g.Sizes.Height != 0.1 || g.Motion.Intervals[0].Velocity[2] != 0.1 {
		t.Errorf("geometry = %+v", g)
	}

	if _, err := Parse([]byte("geometries: [{shape: torus}]")); !errors.Is(err, dynamo.ErrInvalidGeometry) {
		t.Errorf("unknown shape accepted: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drum.yaml")
	want := GetPreset("rotating_drum")
	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Geometries[0].Shape != geometry.Cylinder || got.Geometries[0].Motion.Intervals[0].RotationVelocity != want.Geometries[0].Motion.Intervals[0].RotationVelocity {
		t.Errorf("geometry lost: %+v", got.Geometries[0])
	}
	if got.Simulation.Consolidation != "reduction" {
		t.Errorf("consolidation = %q", got.Simulation.Consolidation)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero step":     func(c *Config) { c.Simulation.TimeStep = 0 },
		"no end":        func(c *Config) { c.Simulation.EndTime = 0 },
		"save too fine": func(c *Config) { c.Simulation.SaveStep = c.Simulation.TimeStep / 2 },
		"no materials":  func(c *Config) { c.Materials = nil },
		"no density":    func(c *Config) { c.Materials[0].Density = 0 },
		"bad radius":    func(c *Config) { c.Packings[0].Radius = 0 },
		"tight packing": func(c *Config) { c.Packings[0].Spacing = c.Packings[0].Radius },
	}
	for name, mutate := range cases {
		cfg := GetPreset("settle")
		mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("%s: expected ErrInvalidParameter, got %v", name, err)
		}
	}
}
