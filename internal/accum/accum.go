// Package accum implements the accumulate-only consolidation of pair forces
// onto particles and walls.
//
// Two disciplines are provided. [Atomic] adds every contribution with a
// compare-and-swap loop and can be shared by any number of workers. [Reduction]
// gives each worker a private buffer and sums the buffers in worker order,
// keyed by entity id, after the pass.
package accum

import (
	"github.com/san-kum/demsim/internal/vecmath"
)

type Vec3 = vecmath.Vec3

// Sink receives force and moment contributions for one entity set.
type Sink interface {
	AddForce(id int, f Vec3)
	AddMoment(id int, m Vec3)
}

// Accumulator holds running totals for one entity set over one step.
type Accumulator interface {
	// Sink returns the contribution target for the given worker.
	Sink(worker int) Sink
	// Finish makes all contributions visible through Force and Moment.
	Finish()
	Force(id int) Vec3
	Moment(id int) Vec3
	// Reset zeroes all totals and resizes to n entities.
	Reset(n int)
	Len() int
}

// Mode names a consolidation discipline.
type Mode string

const (
	ModeAtomic    Mode = "atomic"
	ModeReduction Mode = "reduction"
)

// New returns an accumulator for n entities using the given mode.
func New(mode Mode, n, workers int) Accumulator {
	if mode == ModeReduction {
		return NewReduction(n, workers)
	}
	return NewAtomic(n)
}
