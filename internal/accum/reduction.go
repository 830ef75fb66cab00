package accum

// Reduction gives every worker its own buffer; Finish sums them in worker
// order, so results do not depend on goroutine scheduling.
type Reduction struct {
	n      int
	local  []*buffer
	force  []Vec3
	moment []Vec3
}

type buffer struct {
	force  []Vec3
	moment []Vec3
	dirty  bool
}

func (b *buffer) AddForce(id int, f Vec3) {
	b.force[id] = b.force[id].Add(f)
	b.dirty = true
}

func (b *buffer) AddMoment(id int, m Vec3) {
	b.moment[id] = b.moment[id].Add(m)
	b.dirty = true
}

func NewReduction(n, workers int) *Reduction {
	if workers < 1 {
		workers = 1
	}
	r := &Reduction{local: make([]*buffer, workers)}
	for w := range r.local {
		r.local[w] = &buffer{}
	}
	r.Reset(n)
	return r
}

// Sink returns the private buffer of a worker. Each worker index must be used
// by one goroutine at a time.
func (r *Reduction) Sink(worker int) Sink {
	return r.local[worker%len(r.local)]
}

func (r *Reduction) Finish() {
	for _, b := range r.local {
		if !b.dirty {
			continue
		}
		for i := 0; i < r.n; i++ {
			r.force[i] = r.force[i].Add(b.force[i])
			r.moment[i] = r.moment[i].Add(b.moment[i])
		}
		clear(b.force)
		clear(b.moment)
		b.dirty = false
	}
}

func (r *Reduction) Force(id int) Vec3  { return r.force[id] }
func (r *Reduction) Moment(id int) Vec3 { return r.moment[id] }

func (r *Reduction) Reset(n int) {
	r.n = n
	r.force = resize(r.force, n)
	r.moment = resize(r.moment, n)
	for _, b := range r.local {
		b.force = resize(b.force, n)
		b.moment = resize(b.moment, n)
		b.dirty = false
	}
}

func (r *Reduction) Len() int { return r.n }

// Workers returns the number of private buffers.
func (r *Reduction) Workers() int { return len(r.local) }

func resize(s []Vec3, n int) []Vec3 {
	if cap(s) < n {
		return make([]Vec3, n)
	}
	s = s[:n]
	clear(s)
	return s
}
