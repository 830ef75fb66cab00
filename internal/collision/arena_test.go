package collision

import "testing"

func TestArenaLifecycle(t *testing.T) {
	a := NewArena()

	id, rec := a.Create(ParticleParticle, 5, 2)
	if rec.SrcID != 2 || rec.DstID != 5 {
		t.Errorf("pair should be stored lower index first, got %d-%d", rec.SrcID, rec.DstID)
	}
	rec.TangOverlap = Vec3{1, 0, 0}

	again, rec2 := a.Create(ParticleParticle, 2, 5)
	if again != id || rec2.TangOverlap != (Vec3{1, 0, 0}) {
		t.Error("creating an existing pair must return the live record")
	}

	// particle-wall pairs are not reordered
	pw, rec := a.Create(ParticleWall, 5, 2)
	if rec.SrcID != 5 || rec.DstID != 2 {
		t.Errorf("pw pair reordered: %d-%d", rec.SrcID, rec.DstID)
	}
	if _, ok := a.Find(ParticleWall, 2, 5); ok {
		t.Error("pw lookup must be ordered")
	}
	if a.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", a.Len())
	}

	a.Remove(id)
	if a.Get(id) != nil {
		t.Error("removed record still visible")
	}
	if _, ok := a.Find(ParticleParticle, 2, 5); ok {
		t.Error("removed pair still indexed")
	}
	a.Remove(id)

	reused, rec := a.Create(ParticleParticle, 0, 1)
	if reused != id {
		t.Errorf("expected slot %d to be reused, got %d", id, reused)
	}
	if rec.TangOverlap != (Vec3{}) {
		t.Error("reused slot must start without history")
	}

	var seen []ID
	a.Each(func(id ID, _ *Record) { seen = append(seen, id) })
	if len(seen) != 2 || seen[0] > seen[1] {
		t.Errorf("Each should visit live records in id order, got %v", seen)
	}
	if ids := a.Active(ParticleWall); len(ids) != 1 || ids[0] != pw {
		t.Errorf("unexpected pw ids %v", ids)
	}
}

func TestRecordReset(t *testing.T) {
	r := Record{
		Active:        true,
		TangOverlap:   Vec3{1, 2, 3},
		TotalForce:    Vec3{1, 0, 0},
		NormalOverlap: 0.1,
		Slipping:      true,
	}
	r.ClearOutputs()
	if r.TotalForce != (Vec3{}) || r.Slipping || r.TangOverlap == (Vec3{}) {
		t.Error("ClearOutputs must keep history and drop outputs")
	}
	r.TangOverlap = Vec3{1, 2, 3}
	r.TangForce = Vec3{0, 1, 0}
	r.Release()
	if !r.Active || r.TangOverlap != (Vec3{}) || r.TangForce != (Vec3{}) || r.NormalOverlap != 0 {
		t.Error("Release must drop history and keep the record live")
	}
	r.Reset()
	if r.Active || r.TangOverlap != (Vec3{}) || r.NormalOverlap != 0 {
		t.Error("Reset must drop everything")
	}
}

func TestKindString(t *testing.T) {
	if ParticleParticle.String() != "pp" || ParticleWall.String() != "pw" || Kind(7).String() != "unknown" {
		t.Error("unexpected kind names")
	}
}
