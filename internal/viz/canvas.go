package viz

import (
	"math"
	"strings"

	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/vecmath"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Vec3 = vecmath.Vec3

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// PixelSize is the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the sub-pixel (x, y); y grows downwards.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle draws the outline of a circle; radii below one sub-pixel
// collapse to a dot.
func (c *Canvas) DrawCircle(cx, cy int, r float64) {
	if r < 1 {
		c.Set(cx, cy)
		return
	}
	n := max(8, int(2*math.Pi*r))
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		c.Set(cx+int(math.Round(r*math.Cos(a))), cy+int(math.Round(r*math.Sin(a))))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Projection maps two world axes onto the canvas. The second axis points up.
type Projection struct {
	U, V     int
	Min, Max [2]float64
}

// FitProjection frames all particles and walls seen along the given axes,
// keeping the aspect ratio of the canvas.
func FitProjection(c *Canvas, ps *scene.ParticleStore, ws *scene.WallStore, u, v int) Projection {
	lo := [2]float64{math.Inf(1), math.Inf(1)}
	hi := [2]float64{math.Inf(-1), math.Inf(-1)}
	grow := func(p vecmath.Vec3, pad float64) {
		for k, axis := range [2]int{u, v} {
			lo[k] = math.Min(lo[k], p[axis]-pad)
			hi[k] = math.Max(hi[k], p[axis]+pad)
		}
	}
	for i := 0; i < ps.Len(); i++ {
		grow(ps.Coord(i), ps.Radius(i))
	}
	if ws != nil {
		for i := 0; i < ws.Len(); i++ {
			a, b, cc := ws.Vertices(i)
			grow(a, 0)
			grow(b, 0)
			grow(cc, 0)
		}
	}
	if math.IsInf(lo[0], 0) {
		return Projection{U: u, V: v, Min: [2]float64{-1, -1}, Max: [2]float64{1, 1}}
	}

	pw, ph := c.PixelSize()
	span := math.Max((hi[0]-lo[0])/float64(pw), (hi[1]-lo[1])/float64(ph))
	if span == 0 {
		span = 1e-3
	}
	mid := [2]float64{(lo[0] + hi[0]) / 2, (lo[1] + hi[1]) / 2}
	half := [2]float64{span * float64(pw) / 2, span * float64(ph) / 2}
	return Projection{
		U: u, V: v,
		Min: [2]float64{mid[0] - half[0], mid[1] - half[1]},
		Max: [2]float64{mid[0] + half[0], mid[1] + half[1]},
	}
}

func (p Projection) toPixel(c *Canvas, w vecmath.Vec3) (int, int) {
	pw, ph := c.PixelSize()
	x := (w[p.U] - p.Min[0]) / (p.Max[0] - p.Min[0]) * float64(pw-1)
	y := (p.Max[1] - w[p.V]) / (p.Max[1] - p.Min[1]) * float64(ph-1)
	return int(math.Round(x)), int(math.Round(y))
}

func (p Projection) scale(c *Canvas, length float64) float64 {
	pw, _ := c.PixelSize()
	return length / (p.Max[0] - p.Min[0]) * float64(pw-1)
}

// DrawScene renders wall edges and particle outlines.
func (c *Canvas) DrawScene(ps *scene.ParticleStore, ws *scene.WallStore, p Projection) {
	if ws != nil {
		for i := 0; i < ws.Len(); i++ {
			a, b, cc := ws.Vertices(i)
			ax, ay := p.toPixel(c, a)
			bx, by := p.toPixel(c, b)
			cx, cy := p.toPixel(c, cc)
			c.DrawLine(ax, ay, bx, by)
			c.DrawLine(bx, by, cx, cy)
			c.DrawLine(cx, cy, ax, ay)
		}
	}
	for i := 0; i < ps.Len(); i++ {
		x, y := p.toPixel(c, ps.Coord(i))
		c.DrawCircle(x, y, p.scale(c, ps.Radius(i)))
	}
}
