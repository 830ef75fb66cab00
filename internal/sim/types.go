package sim

import (
	"github.com/san-kum/demsim/internal/accum"
	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/detect"
	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/geometry"
	"github.com/san-kum/demsim/internal/integrators"
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/vecmath"
)

type Vec3 = vecmath.Vec3

// World is the mutable scene a simulator advances.
type World struct {
	Particles    *scene.ParticleStore
	Walls        *scene.WallStore
	Geometries   []*geometry.Geometry
	PBC          dynamo.PBC
	Gravity      Vec3
	Interactions dynamo.InteractionLookup
}

type Integrator interface {
	Name() string
	Step(ps *scene.ParticleStore, f integrators.Forces, gravity Vec3, dt float64)
}

// Snapshot is the state handed to metrics and observers after each step.
type Snapshot struct {
	Time      float64
	Step      int
	Particles *scene.ParticleStore
	Walls     *scene.WallStore
	Arena     *collision.Arena
	Contacts  detect.Stats
	// WallForce is the total force the particles exert on all walls.
	WallForce Vec3
}

type Metric interface {
	Name() string
	Observe(s *Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s *Snapshot)
}

// Mode selects how contact laws are driven.
type Mode string

const (
	ModeScalar  Mode = "scalar"
	ModeBatched Mode = "batched"
)

type Config struct {
	dynamo.Config
	Mode          Mode
	Consolidation accum.Mode
}

func DefaultConfig() Config {
	return Config{
		Config:        dynamo.DefaultConfig(),
		Mode:          ModeScalar,
		Consolidation: accum.ModeAtomic,
	}
}

// Result holds the sampled time series of every metric.
type Result struct {
	Times      []float64
	Series     map[string][]float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}
