package contact

import (
	"github.com/san-kum/demsim/internal/accum"
	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/dynamo"
)

// minConsolidateChunk keeps tiny collision sets on one goroutine.
const minConsolidateChunk = 64

// Consolidate adds the stored results of the in-contact records ids[i] to the
// accumulators. For particle-particle models src and dst are both the particle
// accumulator; for particle-wall models src is the wall accumulator.
// inContact[i] gates ids[i]; stale records are skipped.
func Consolidate(m Model, t, dt float64, arena *collision.Arena, ids []collision.ID, inContact []bool, src, dst accum.Accumulator, workers int) {
	dynamo.ParallelFor(len(ids), workers, minConsolidateChunk, func(worker, start, end int) {
		srcSink, dstSink := src.Sink(worker), dst.Sink(worker)
		for i := start; i < end; i++ {
			if !inContact[i] {
				continue
			}
			rec := arena.Get(ids[i])
			if rec == nil {
				continue
			}
			m.ConsolidateSrc(t, dt, srcSink, rec)
			m.ConsolidateDst(t, dt, dstSink, rec)
		}
	})
}
