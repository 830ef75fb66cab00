// Package export renders snapshots and metric series as SVG.
package export

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/san-kum/demsim/internal/store"
)

var palette = []string{"#00ccff", "#ff8800", "#00ff88", "#ff00ff", "#ffcc00", "#8888ff"}

// materialColor picks a stable color per material key.
func materialColor(material string) string {
	h := fnv.New32a()
	h.Write([]byte(material))
	return palette[h.Sum32()%uint32(len(palette))]
}

type bounds struct{ minX, maxX, minY, maxY float64 }

func (b *bounds) pad(frac float64) {
	rx, ry := b.maxX-b.minX, b.maxY-b.minY
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	b.minX -= rx * frac
	b.maxX += rx * frac
	b.minY -= ry * frac
	b.maxY += ry * frac
}

// SnapshotToSVG draws every particle as a circle projected onto the world
// axes u (right) and v (up). Contacts carrying force are drawn as lines
// between particle centers when withContacts is set.
func SnapshotToSVG(s *store.Snapshot, u, v, width int, withContacts bool) string {
	if len(s.Particles) == 0 {
		return ""
	}

	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, p := range s.Particles {
		b.minX = math.Min(b.minX, p.Coord[u]-p.Radius)
		b.maxX = math.Max(b.maxX, p.Coord[u]+p.Radius)
		b.minY = math.Min(b.minY, p.Coord[v]-p.Radius)
		b.maxY = math.Max(b.maxY, p.Coord[v]+p.Radius)
	}
	b.pad(0.05)

	scale := float64(width) / (b.maxX - b.minX)
	height := int(math.Ceil((b.maxY - b.minY) * scale))
	px := func(x float64) float64 { return (x - b.minX) * scale }
	py := func(y float64) float64 { return float64(height) - (y-b.minY)*scale }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
	fmt.Fprintf(&sb, "<!-- t=%g step=%d -->\n", s.Time, s.Step)

	if withContacts {
		sb.WriteString(`<g stroke="#ff4444" stroke-width="1">` + "\n")
		for _, c := range s.Collisions {
			if c.Kind != "pp" || c.Src >= len(s.Particles) || c.Dst >= len(s.Particles) {
				continue
			}
			a, d := s.Particles[c.Src].Coord, s.Particles[c.Dst].Coord
			fmt.Fprintf(&sb, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", px(a[u]), py(a[v]), px(d[u]), py(d[v]))
		}
		sb.WriteString("</g>\n")
	}

	for _, p := range s.Particles {
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="%s"/>`+"\n",
			px(p.Coord[u]), py(p.Coord[v]), p.Radius*scale, materialColor(p.Material))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// SeriesToSVG plots values against times as a single polyline.
func SeriesToSVG(times, values []float64, width, height int, strokeColor string) string {
	n := min(len(times), len(values))
	if n < 2 {
		return ""
	}

	b := bounds{times[0], times[0], values[0], values[0]}
	for i := 0; i < n; i++ {
		b.minX = math.Min(b.minX, times[i])
		b.maxX = math.Max(b.maxX, times[i])
		b.minY = math.Min(b.minY, values[i])
		b.maxY = math.Max(b.maxY, values[i])
	}
	b.pad(0.1)
	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i := 0; i < n; i++ {
		x := (times[i] - b.minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-b.minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>
`)
	return sb.String()
}
