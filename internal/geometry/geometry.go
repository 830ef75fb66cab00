// Package geometry describes the wall geometries of a scene: primitive or
// mesh shapes with a pose and a time dependent motion, exported as wall
// facets for contact evaluation.
package geometry

import (
	"fmt"
	"math"

	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/vecmath"
)

type (
	Vec3 = vecmath.Vec3
	Mat3 = vecmath.Mat3
)

// AABB is an axis aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

func (a AABB) Contains(p Vec3) bool {
	for k := 0; k < 3; k++ {
		if p[k] < a.Min[k] || p[k] > a.Max[k] {
			return false
		}
	}
	return true
}

// Expand grows the box by d on every side.
func (a AABB) Expand(d float64) AABB {
	e := Vec3{d, d, d}
	return AABB{Min: a.Min.Sub(e), Max: a.Max.Add(e)}
}

// Geometry is a rigid wall body. Its mesh is kept in the body frame; the
// world mesh at time t is Motion.PoseAt(t) applied to rotation*local+center.
type Geometry struct {
	Name     string
	Key      string
	Color    string
	Material string
	Motion   Motion

	shape    Shape
	sizes    Sizes
	rotation Mat3
	scaling  float64
	accuracy int
	center   Vec3
	local    []Triangle
}

// New builds a primitive geometry centered at center.
func New(name string, shape Shape, sizes Sizes, center Vec3, accuracy int) (*Geometry, error) {
	if shape == STL {
		return nil, fmt.Errorf("%s: stl geometry needs a mesh: %w", name, dynamo.ErrInvalidGeometry)
	}
	if err := sizes.Validate(shape); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if accuracy <= 0 {
		accuracy = defaultAccuracy
	}
	g := &Geometry{
		Name:     name,
		shape:    shape,
		sizes:    sizes,
		rotation: vecmath.Identity(),
		scaling:  1,
		accuracy: accuracy,
		center:   center,
	}
	g.local = buildMesh(shape, sizes, accuracy)
	return g, nil
}

// NewMesh builds a geometry from world-space triangles.
func NewMesh(name string, mesh []Triangle) (*Geometry, error) {
	g := &Geometry{Name: name, rotation: vecmath.Identity(), scaling: 1, accuracy: defaultAccuracy}
	if err := g.SetMesh(mesh); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}

func (g *Geometry) Shape() Shape             { return g.shape }
func (g *Geometry) Sizes() Sizes             { return g.sizes }
func (g *Geometry) Scaling() float64         { return g.scaling }
func (g *Geometry) Accuracy() int            { return g.accuracy }
func (g *Geometry) RotationMatrix() Mat3     { return g.rotation }
func (g *Geometry) TrianglesNumber() int     { return len(g.local) }
func (g *Geometry) SetCenter(c Vec3)         { g.center = c }
func (g *Geometry) Shift(offset Vec3)        { g.center = g.center.Add(offset) }
func (g *Geometry) SetRotationMatrix(m Mat3) { g.rotation = m }

// SetMesh replaces the geometry by the given world-space mesh. The center
// becomes the vertex centroid and the rotation is reset.
func (g *Geometry) SetMesh(mesh []Triangle) error {
	if len(mesh) == 0 {
		return fmt.Errorf("empty mesh: %w", dynamo.ErrInvalidGeometry)
	}
	var c Vec3
	for _, t := range mesh {
		c = c.Add(t.V1).Add(t.V2).Add(t.V3)
	}
	c = c.Mul(1 / float64(3*len(mesh)))

	g.local = make([]Triangle, len(mesh))
	for i, t := range mesh {
		g.local[i] = Triangle{t.V1.Sub(c), t.V2.Sub(c), t.V3.Sub(c)}
	}
	g.shape = STL
	g.center = c
	g.rotation = vecmath.Identity()
	box := g.localBounds()
	ext := box.Max.Sub(box.Min)
	g.sizes = Sizes{Width: ext[0], Depth: ext[1], Height: ext[2]}
	return nil
}

// SetAccuracy changes the tessellation of a primitive and rebuilds its mesh.
// It has no effect on mesh geometries.
func (g *Geometry) SetAccuracy(n int) {
	g.accuracy = max(n, minAccuracy)
	if g.shape != STL {
		g.rebuild()
	}
}

// Scale multiplies every size by factor about the center.
func (g *Geometry) Scale(factor float64) error {
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return fmt.Errorf("scale factor %g: %w", factor, dynamo.ErrInvalidGeometry)
	}
	g.scaling *= factor
	g.sizes = g.sizes.scaled(factor)
	for i := range g.local {
		t := &g.local[i]
		t.V1, t.V2, t.V3 = t.V1.Mul(factor), t.V2.Mul(factor), t.V3.Mul(factor)
	}
	return nil
}

// Deform scales a mesh geometry independently along its body axes.
func (g *Geometry) Deform(factors Vec3) error {
	if g.shape != STL {
		return fmt.Errorf("%s: only mesh geometries can be deformed: %w", g.shape, dynamo.ErrInvalidGeometry)
	}
	for k := 0; k < 3; k++ {
		if factors[k] <= 0 {
			return fmt.Errorf("deform factors %v: %w", factors, dynamo.ErrInvalidGeometry)
		}
	}
	for i := range g.local {
		t := &g.local[i]
		t.V1, t.V2, t.V3 = vecmath.MulElem(t.V1, factors), vecmath.MulElem(t.V2, factors), vecmath.MulElem(t.V3, factors)
	}
	g.sizes.Width *= factors[0]
	g.sizes.Depth *= factors[1]
	g.sizes.Height *= factors[2]
	return nil
}

// Resize sets new sizes of a primitive and rederives its mesh.
func (g *Geometry) Resize(s Sizes) error {
	if g.shape == STL {
		return fmt.Errorf("mesh geometries are resized by Scale or Deform: %w", dynamo.ErrInvalidGeometry)
	}
	if err := s.Validate(g.shape); err != nil {
		return err
	}
	g.sizes = s
	g.scaling = 1
	g.rebuild()
	return nil
}

// Rotate turns the geometry about its center; rotations compose.
func (g *Geometry) Rotate(m Mat3) {
	g.rotation = m.Mul3(g.rotation)
}

func (g *Geometry) rebuild() {
	g.local = buildMesh(g.shape, g.sizes, g.accuracy)
}

func (g *Geometry) toWorld(pose Pose, v Vec3) Vec3 {
	return pose.Apply(g.rotation.Mul3x1(v).Add(g.center))
}

// Center returns the center at time t.
func (g *Geometry) Center(t float64) Vec3 {
	return g.Motion.PoseAt(t).Apply(g.center)
}

// Mesh returns the world-space triangles at time t.
func (g *Geometry) Mesh(t float64) []Triangle {
	pose := g.Motion.PoseAt(t)
	out := make([]Triangle, len(g.local))
	for i, tri := range g.local {
		out[i] = Triangle{g.toWorld(pose, tri.V1), g.toWorld(pose, tri.V2), g.toWorld(pose, tri.V3)}
	}
	return out
}

// BoundingBox returns the world-space bounds at time t.
func (g *Geometry) BoundingBox(t float64) AABB {
	return bounds(g.Mesh(t))
}

func (g *Geometry) localBounds() AABB {
	return bounds(g.local)
}

func bounds(mesh []Triangle) AABB {
	if len(mesh) == 0 {
		return AABB{}
	}
	box := AABB{Min: mesh[0].V1, Max: mesh[0].V1}
	for _, t := range mesh {
		for _, v := range [3]Vec3{t.V1, t.V2, t.V3} {
			box.Min = vecmath.Min(box.Min, v)
			box.Max = vecmath.Max(box.Max, v)
		}
	}
	return box
}

// Walls exports the facets at time t, tagged with the geometry index so
// they can later be replaced in place.
func (g *Geometry) Walls(t float64, index int) []scene.Facet {
	vel, rotVel, rotCenter := g.Motion.VelocitiesAt(t)
	mesh := g.Mesh(t)
	out := make([]scene.Facet, len(mesh))
	for i, tri := range mesh {
		f := scene.NewFacet(tri.V1, tri.V2, tri.V3, g.Material)
		f.Vel = vel
		f.RotVel = rotVel
		f.RotCenter = rotCenter
		f.Geometry = index
		out[i] = f
	}
	return out
}
