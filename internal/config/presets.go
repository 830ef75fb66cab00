package config

import (
	"sort"

	"github.com/san-kum/demsim/internal/contact"
	"github.com/san-kum/demsim/internal/geometry"
	"github.com/san-kum/demsim/internal/scene"
)

type Preset struct {
	Description string
	build       func() *Config
}

var Presets = map[string]Preset{
	"settle": {
		Description: "a loose block of glass beads settling into a box",
		build:       settle,
	},
	"slide": {
		Description: "one bead launched along a steel floor until friction stops it",
		build:       slide,
	},
	"adhesion": {
		Description: "fine sticky powder dropped on a plate, Popov-JKR on both sides",
		build:       adhesion,
	},
	"rotating_drum": {
		Description: "beads tumbling in a drum spinning about its axis",
		build:       rotatingDrum,
	},
}

// GetPreset returns a fresh copy of the named scene, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	glass = scene.Material{Key: "glass", Density: 2500, YoungModulus: 1e7, PoissonRatio: 0.25}
	steel = scene.Material{Key: "steel", Density: 7800, YoungModulus: 2e8, PoissonRatio: 0.3}
	// soft and sticky, with a large surface tension so adhesion is visible
	powder = scene.Material{Key: "powder", Density: 1500, YoungModulus: 5e6, PoissonRatio: 0.3, SurfaceTension: 0.5}
)

func pairs(a, b string, f scene.PairFriction) []InteractionConfig {
	return []InteractionConfig{
		{A: a, B: a, PairFriction: f},
		{A: a, B: b, PairFriction: f},
	}
}

func floorBox(material string, width float64) GeometryConfig {
	return GeometryConfig{
		Name:     "floor",
		Shape:    geometry.Box,
		Sizes:    geometry.Sizes{Width: width, Depth: width, Height: 0.01},
		Center:   Vec3{0, 0, -0.005},
		Material: material,
		Color:    "#8a8f98",
	}
}

func settle() *Config {
	c := DefaultConfig()
	c.Simulation.EndTime = 0.2
	c.Simulation.SaveStep = 2e-3
	c.Models.PW.Key = contact.KeyPWHertzMindlin
	c.Materials = []scene.Material{glass, steel}
	c.Interactions = pairs("glass", "steel", scene.PairFriction{Restitution: 0.5, SlidingFriction: 0.4, RollingFriction: 0.01})
	c.Packings = []PackingConfig{{
		Material: "glass",
		Radius:   0.004,
		Origin:   Vec3{-0.014, -0.014, 0.006},
		Count:    [3]int{4, 4, 4},
		Jitter:   0.1,
		Seed:     1,
	}}
	c.Geometries = []GeometryConfig{floorBox("steel", 0.1)}
	return c
}

func slide() *Config {
	c := DefaultConfig()
	c.Simulation.EndTime = 0.3
	c.Simulation.SaveStep = 2e-3
	c.Materials = []scene.Material{glass, steel}
	c.Interactions = pairs("glass", "steel", scene.PairFriction{Restitution: 0.6, SlidingFriction: 0.3, RollingFriction: 0.02})
	c.Particles = []ParticleConfig{{
		Coord:    Vec3{-0.05, 0, 0.00499},
		Vel:      Vec3{0.5, 0, 0},
		Radius:   0.005,
		Material: "glass",
	}}
	c.Geometries = []GeometryConfig{floorBox("steel", 0.3)}
	return c
}

func adhesion() *Config {
	c := DefaultConfig()
	c.Simulation.TimeStep = 2e-6
	c.Simulation.EndTime = 0.02
	c.Simulation.SaveStep = 2e-4
	c.Models.PP.Key = contact.KeyPPPopovJKR
	c.Models.PW.Key = contact.KeyPWPopovJKR
	c.Materials = []scene.Material{powder, steel}
	c.Interactions = pairs("powder", "steel", scene.PairFriction{Restitution: 0.3, SlidingFriction: 0.5, RollingFriction: 0.05})
	c.Packings = []PackingConfig{{
		Material: "powder",
		Radius:   0.001,
		Origin:   Vec3{-0.003, -0.003, 0.0012},
		Count:    [3]int{4, 4, 2},
		Vel:      Vec3{0, 0, -0.05},
	}}
	c.Geometries = []GeometryConfig{floorBox("steel", 0.02)}
	return c
}

func rotatingDrum() *Config {
	c := DefaultConfig()
	c.Simulation.EndTime = 0.3
	c.Simulation.SaveStep = 2e-3
	c.Simulation.Consolidation = "reduction"
	c.Gravity = Vec3{0, 0, -9.81}
	c.Materials = []scene.Material{glass, steel}
	c.Interactions = pairs("glass", "steel", scene.PairFriction{Restitution: 0.5, SlidingFriction: 0.5, RollingFriction: 0.02})
	c.Packings = []PackingConfig{{
		Material: "glass",
		Radius:   0.003,
		Origin:   Vec3{-0.012, -0.008, -0.012},
		Count:    [3]int{4, 3, 4},
		Jitter:   0.1,
		Seed:     7,
	}}
	c.Geometries = []GeometryConfig{{
		Name:     "drum",
		Shape:    geometry.Cylinder,
		Sizes:    geometry.Sizes{Radius: 0.03, Height: 0.03},
		Material: "steel",
		Color:    "#c97b2b",
		Accuracy: 32,
		// axis along y, spinning about it
		Rotation: Vec3{1.5707963267948966, 0, 0},
		Motion: geometry.Motion{Intervals: []geometry.Interval{{
			TimeBeg:          0,
			TimeEnd:          10,
			RotationVelocity: Vec3{0, 3, 0},
		}}},
	}}
	return c
}
