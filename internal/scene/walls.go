package scene

import "github.com/san-kum/demsim/internal/vecmath"

// Facet is one triangular wall element.
type Facet struct {
	V1, V2, V3 Vec3
	Normal     Vec3
	Vel        Vec3
	RotCenter  Vec3
	RotVel     Vec3
	Material   string
	Geometry   int
}

// NewFacet builds a facet with its normal derived from the vertex winding.
func NewFacet(v1, v2, v3 Vec3, material string) Facet {
	return Facet{
		V1:       v1,
		V2:       v2,
		V3:       v3,
		Normal:   vecmath.SafeNormalize(v2.Sub(v1).Cross(v3.Sub(v1))),
		Material: material,
		Geometry: -1,
	}
}

// WallStore keeps wall facets indexed by wall id.
type WallStore struct {
	Facets []Facet
}

func NewWallStore() *WallStore {
	return &WallStore{}
}

func (w *WallStore) Add(f Facet) int {
	w.Facets = append(w.Facets, f)
	return len(w.Facets) - 1
}

func (w *WallStore) Len() int { return len(w.Facets) }

func (w *WallStore) Vertices(i int) (Vec3, Vec3, Vec3) {
	f := &w.Facets[i]
	return f.V1, f.V2, f.V3
}

func (w *WallStore) NormalVector(i int) Vec3 { return w.Facets[i].Normal }
func (w *WallStore) Vel(i int) Vec3          { return w.Facets[i].Vel }
func (w *WallStore) RotCenter(i int) Vec3    { return w.Facets[i].RotCenter }
func (w *WallStore) RotVel(i int) Vec3       { return w.Facets[i].RotVel }
func (w *WallStore) Material(i int) string   { return w.Facets[i].Material }

// ReplaceGeometry overwrites, in order, the facets owned by geometry g.
// Wall ids stay stable, so collision records keyed by them remain valid.
func (w *WallStore) ReplaceGeometry(g int, facets []Facet) {
	k := 0
	for i := range w.Facets {
		if w.Facets[i].Geometry != g {
			continue
		}
		if k >= len(facets) {
			break
		}
		w.Facets[i] = facets[k]
		w.Facets[i].Geometry = g
		k++
	}
}
