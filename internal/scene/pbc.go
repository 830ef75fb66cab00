package scene

import "math"

// PeriodicBox wraps coordinates into [Min, Max) along the enabled axes.
type PeriodicBox struct {
	Min, Max Vec3
	X, Y, Z  bool
}

func (b PeriodicBox) Enabled() bool { return b.X || b.Y || b.Z }

func (b PeriodicBox) axes() [3]bool { return [3]bool{b.X, b.Y, b.Z} }

func (b PeriodicBox) Correct(p Vec3) Vec3 {
	axes := b.axes()
	for k := 0; k < 3; k++ {
		if !axes[k] {
			continue
		}
		l := b.Max[k] - b.Min[k]
		if l <= 0 {
			continue
		}
		p[k] = b.Min[k] + math.Mod(math.Mod(p[k]-b.Min[k], l)+l, l)
	}
	return p
}

func (b PeriodicBox) Distance(a, c Vec3) Vec3 {
	d := c.Sub(a)
	axes := b.axes()
	for k := 0; k < 3; k++ {
		if !axes[k] {
			continue
		}
		l := b.Max[k] - b.Min[k]
		if l <= 0 {
			continue
		}
		d[k] -= l * math.Round(d[k]/l)
	}
	return d
}
