package accum

import (
	"math"
	"sync/atomic"
)

// Atomic accumulates with a lock-free add per component.
type Atomic struct {
	force  []uint64
	moment []uint64
}

func NewAtomic(n int) *Atomic {
	a := &Atomic{}
	a.Reset(n)
	return a
}

func addFloat(p *uint64, d float64) {
	if d == 0 {
		return
	}
	for {
		old := atomic.LoadUint64(p)
		nv := math.Float64bits(math.Float64frombits(old) + d)
		if atomic.CompareAndSwapUint64(p, old, nv) {
			return
		}
	}
}

func loadVec(s []uint64, id int) Vec3 {
	return Vec3{
		math.Float64frombits(atomic.LoadUint64(&s[id*3])),
		math.Float64frombits(atomic.LoadUint64(&s[id*3+1])),
		math.Float64frombits(atomic.LoadUint64(&s[id*3+2])),
	}
}

func (a *Atomic) Sink(int) Sink { return a }

func (a *Atomic) AddForce(id int, f Vec3) {
	addFloat(&a.force[id*3], f[0])
	addFloat(&a.force[id*3+1], f[1])
	addFloat(&a.force[id*3+2], f[2])
}

func (a *Atomic) AddMoment(id int, m Vec3) {
	addFloat(&a.moment[id*3], m[0])
	addFloat(&a.moment[id*3+1], m[1])
	addFloat(&a.moment[id*3+2], m[2])
}

func (a *Atomic) Finish() {}

func (a *Atomic) Force(id int) Vec3  { return loadVec(a.force, id) }
func (a *Atomic) Moment(id int) Vec3 { return loadVec(a.moment, id) }

func (a *Atomic) Reset(n int) {
	if cap(a.force) < n*3 {
		a.force = make([]uint64, n*3)
		a.moment = make([]uint64, n*3)
		return
	}
	a.force = a.force[:n*3]
	a.moment = a.moment[:n*3]
	clear(a.force)
	clear(a.moment)
}

func (a *Atomic) Len() int { return len(a.force) / 3 }
