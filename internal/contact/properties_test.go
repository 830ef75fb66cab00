package contact_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/demsim/internal/accum"
	"github.com/san-kum/demsim/internal/collision"
	"github.com/san-kum/demsim/internal/compute"
	"github.com/san-kum/demsim/internal/contact"
	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/scene"
	"github.com/san-kum/demsim/internal/vecmath"
)

const dt = 1e-5

func jkrForce(p dynamo.InteractProps, r, overlap float64) float64 {
	adh := 1.5 * math.Pi * p.EquivSurfaceTension * r
	ratio := p.EquivSurfaceTension / p.EquivYoungModulus
	crit := math.Cbrt(0.4626 * ratio * ratio * r)
	return adh * (-1 + 0.12*math.Pow(overlap/crit+1, 5.0/3.0))
}

var _ = Describe("particle-wall Popov-JKR", func() {
	var (
		model contact.Model
		props dynamo.InteractProps
	)

	BeforeEach(func() {
		model = contact.NewPWPopovJKR()
		props = refProps()
	})

	It("is identified by its persisted key", func() {
		Expect(model.Info().Key).To(Equal("5048D3D96D3843949F5B427DF9FCCEDF"))
		Expect(model.Info().HelpFile).To(Equal("/Contact Models/PopovJKR.pdf"))
		Expect(model.Kind()).To(Equal(collision.ParticleWall))
	})

	It("leaves the record untouched without overlap", func() {
		ps, ws, arena, id := pwPair(Vec3{0, 0, 0.0101}, Vec3{0, 0, -1}, Vec3{})
		model.SetSystem(ps, ws, nil)
		rec := arena.Get(id)
		rec.TangOverlap = Vec3{1e-6, 0, 0}
		before := *rec

		res := model.Calculate(0, dt, 0, 0, props, rec)
		Expect(res.InContact).To(BeFalse())
		Expect(res.Force).To(Equal(Vec3{}))
		Expect(*rec).To(Equal(before))
	})

	It("reproduces the reference resting contact", func() {
		ps, ws, arena, id := pwPair(Vec3{0, 0, 0.0099}, Vec3{}, Vec3{})
		model.SetSystem(ps, ws, nil)
		rec := arena.Get(id)

		res := model.Calculate(0, dt, 0, 0, props, rec)
		Expect(res.InContact).To(BeTrue())

		want := jkrForce(props, refRadius, 1e-4)
		Expect(want).To(BeNumerically(">", 0))
		Expect(res.Force[2]).To(BeNumerically("~", want, want*1e-12))
		Expect(res.Force[0]).To(BeNumerically("~", 0, 1e-15))
		Expect(res.Force[1]).To(BeNumerically("~", 0, 1e-15))
		Expect(res.Moment1.Len()).To(BeNumerically("<", 1e-15))
		Expect(rec.NormalOverlap).To(BeNumerically("~", 1e-4, 1e-15))
		Expect(rec.TotalForce).To(Equal(res.Force))
	})

	It("clamps a fast slide to the Coulomb bound and reproduces it on the next call", func() {
		ps, ws, arena, id := pwPair(Vec3{0, 0, 0.0099}, Vec3{10, 0, 0}, Vec3{})
		model.SetSystem(ps, ws, nil)
		rec := arena.Get(id)

		res := model.Calculate(0, dt, 0, 0, props, rec)
		Expect(rec.Slipping).To(BeTrue())

		limit := props.SlidingFriction * jkrForce(props, refRadius, 1e-4)
		Expect(rec.TangForce.Len()).To(BeNumerically("~", limit, limit*1e-9))
		Expect(rec.TangForce[0]).To(BeNumerically("<", 0))
		Expect(res.Force[0]).To(BeNumerically("~", rec.TangForce[0], 1e-12))

		kt := 8 * props.EquivShearModulus * math.Sqrt(refRadius*1e-4)
		Expect(vecmath.ApproxEqual(rec.TangOverlap.Mul(-kt), rec.TangForce, 1e-9)).To(BeTrue())

		// stop sliding: the stored overlap alone yields the clamped force again
		ps.Vels[0] = Vec3{}
		first := rec.TangForce
		model.Calculate(dt, dt, 0, 0, props, rec)
		Expect(vecmath.ApproxEqual(rec.TangForce, first, limit*1e-9)).To(BeTrue())
	})

	It("keeps tangential state in the contact plane", func() {
		ps, ws, arena, id := pwPair(Vec3{0, 0, 0.0099}, Vec3{0.3, 0.2, 0}, Vec3{0, 0, 0})
		model.SetSystem(ps, ws, nil)
		rec := arena.Get(id)
		rec.TangOverlap = Vec3{1e-6, 0, 5e-7}

		model.Calculate(0, dt, 0, 0, props, rec)
		n := Vec3{0, 0, 1}
		Expect(math.Abs(rec.TangOverlap.Dot(n))).To(BeNumerically("<", 1e-18))
		Expect(math.Abs(rec.TangForce.Dot(n))).To(BeNumerically("<", 1e-12))
	})

	It("flips the wall normal toward a particle below the facet", func() {
		ps, ws, arena, id := pwPair(Vec3{0, 0, -0.0099}, Vec3{}, Vec3{})
		model.SetSystem(ps, ws, nil)

		res := model.Calculate(0, dt, 0, 0, props, arena.Get(id))
		Expect(res.Force[2]).To(BeNumerically("<", 0))
	})

	It("opposes spin with a rolling torque", func() {
		ps, ws, arena, id := pwPair(Vec3{0, 0, 0.0099}, Vec3{}, Vec3{0, 0, 50})
		model.SetSystem(ps, ws, nil)

		res := model.Calculate(0, dt, 0, 0, props, arena.Get(id))
		Expect(res.Moment1[2]).To(BeNumerically("<", 0))
	})

	It("moves the particle side of a rotating wall", func() {
		ps, ws, arena, id := pwPair(Vec3{0.5, 0, 0.0099}, Vec3{}, Vec3{})
		ws.Facets[0].RotVel = Vec3{0, 0, 10}
		model.SetSystem(ps, ws, nil)
		rec := arena.Get(id)

		res := model.Calculate(0, dt, 0, 0, props, rec)
		// wall surface at the contact moves along +y, dragging the particle
		Expect(rec.TangForce[1]).To(BeNumerically(">", 0))
		Expect(res.Moment2.Len()).To(BeNumerically(">", 0))
	})
})

var _ = Describe("particle-particle laws", func() {
	It("push the pair apart with equal and opposite forces", func() {
		for _, model := range allModels() {
			if model.Kind() != collision.ParticleParticle {
				continue
			}
			ps, arena, id := ppPair(0.0198, Vec3{}, Vec3{})
			model.SetSystem(ps, nil, nil)
			rec := arena.Get(id)

			res := model.Calculate(0, dt, 0, 1, refProps(), rec)
			Expect(res.InContact).To(BeTrue(), model.Info().Name)
			Expect(res.Force[0]).To(BeNumerically("<", 0), model.Info().Name)

			acc := accum.NewAtomic(2)
			contact.Consolidate(model, 0, dt, arena, []collision.ID{id}, []bool{true}, acc, acc, 1)
			acc.Finish()
			Expect(acc.Force(0).Add(acc.Force(1)).Len()).To(BeNumerically("<", 1e-12), model.Info().Name)
		}
	})

	It("ignores separated and coincident pairs", func() {
		for _, model := range allModels() {
			if model.Kind() != collision.ParticleParticle {
				continue
			}
			for _, dist := range []float64{0.021, 0} {
				ps, arena, id := ppPair(dist, Vec3{}, Vec3{})
				model.SetSystem(ps, nil, nil)
				rec := arena.Get(id)
				before := *rec
				Expect(model.Calculate(0, dt, 0, 1, refProps(), rec).InContact).To(BeFalse())
				Expect(*rec).To(Equal(before))
			}
		}
	})

	It("scales the linear elastic law with its stiffness parameter", func() {
		model := contact.NewPPLinearElastic()
		ps, arena, id := ppPair(0.0198, Vec3{}, Vec3{})
		model.SetSystem(ps, nil, nil)

		Expect(model.SetParameters(map[string]float64{"normal_stiffness": 1e4})).To(Succeed())
		res := model.Calculate(0, dt, 0, 1, refProps(), arena.Get(id))
		Expect(res.Force[0]).To(BeNumerically("~", -1e4*2e-4, 1e-9))
	})
})

var _ = Describe("consolidation", func() {
	It("skips pairs that were not in contact", func() {
		model := contact.NewPPHertzMindlin()
		ps, arena, id := ppPair(0.0198, Vec3{}, Vec3{})
		model.SetSystem(ps, nil, nil)
		model.Calculate(0, dt, 0, 1, refProps(), arena.Get(id))

		acc := accum.NewReduction(2, 2)
		contact.Consolidate(model, 0, dt, arena, []collision.ID{id}, []bool{false}, acc, acc, 2)
		acc.Finish()
		Expect(acc.Force(0)).To(Equal(Vec3{}))
		Expect(acc.Force(1)).To(Equal(Vec3{}))
	})

	It("sends the wall reaction to the wall accumulator", func() {
		model := contact.NewPWHertzMindlin()
		ps, ws, arena, id := pwPair(Vec3{0, 0, 0.0099}, Vec3{}, Vec3{})
		model.SetSystem(ps, ws, nil)
		res := model.Calculate(0, dt, 0, 0, refProps(), arena.Get(id))

		walls, particles := accum.NewAtomic(1), accum.NewAtomic(1)
		contact.Consolidate(model, 0, dt, arena, []collision.ID{id}, []bool{true}, walls, particles, 1)
		walls.Finish()
		particles.Finish()
		Expect(particles.Force(0)).To(Equal(res.Force))
		Expect(walls.Force(0)).To(Equal(res.Force.Mul(-1)))
	})
})

var _ = Describe("scalar and batched paths", func() {
	for _, model := range allModels() {
		model := model
		It("agree exactly for "+model.Kind().String()+" "+model.Info().Name, func() {
			scalar, batched := collision.NewArena(), collision.NewArena()
			ps, ws := randomScene(40, 7, scalar, batched)
			table := refTable()
			model.SetSystem(ps, ws, nil)

			kind := model.Kind()
			for _, id := range scalar.Active(kind) {
				rec := scalar.Get(id)
				matA := ps.Material(rec.SrcID)
				if kind == collision.ParticleWall {
					matA = ws.Material(rec.SrcID)
				}
				props, err := table.Interaction(matA, ps.Material(rec.DstID))
				Expect(err).NotTo(HaveOccurred())
				model.Calculate(0, dt, rec.SrcID, rec.DstID, props, rec)
			}

			b, err := contact.Flatten(ps, ws, nil, batched, kind, table)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Collisions.Len()).To(BeNumerically(">", 0))
			model.CalculateBatch(0, dt, b, compute.NewCPUBackendWorkers(4))
			b.Scatter(batched)

			for _, id := range scalar.Active(kind) {
				Expect(*batched.Get(id)).To(Equal(*scalar.Get(id)))
			}
		})
	}

	It("reports a missing interaction while flattening", func() {
		arena := collision.NewArena()
		ps, ws := randomScene(3, 1, arena)
		_, err := contact.Flatten(ps, ws, nil, arena, collision.ParticleWall, scene.NewInteractionTable())
		Expect(err).To(MatchError(dynamo.ErrMissingInteraction))
	})
})

var _ = Describe("degenerate inputs", func() {
	It("never produce non-finite output", func() {
		radii := []float64{0, 1e-12, 0.01, 1e3}
		masses := []float64{0, 1e-12, 0.01}
		heights := []float64{0, 1e-300, 0.005, 0.0099}
		moduli := []float64{0, 1e-300, 1e8, math.MaxFloat64}

		for _, model := range allModels() {
			for _, r := range radii {
				for _, m := range masses {
					for _, h := range heights {
						for _, e := range moduli {
							props := refProps()
							props.EquivYoungModulus = e
							props.EquivShearModulus = e / 2

							var res contact.Result
							var rec *collision.Record
							if model.Kind() == collision.ParticleWall {
								ps, ws, arena, id := pwPair(Vec3{0, 0, h}, Vec3{1, 0, -1}, Vec3{0, 3, 0})
								ps.Radii[0], ps.Masses[0] = r, m
								model.SetSystem(ps, ws, nil)
								rec = arena.Get(id)
								res = model.Calculate(0, dt, 0, 0, props, rec)
							} else {
								ps, arena, id := ppPair(h, Vec3{1, 0, 0}, Vec3{-1, 1, 0})
								ps.Radii[0], ps.Masses[0] = r, m
								model.SetSystem(ps, nil, nil)
								rec = arena.Get(id)
								res = model.Calculate(0, dt, 0, 1, props, rec)
							}

							Expect(vecmath.IsFinite(res.Force)).To(BeTrue())
							Expect(vecmath.IsFinite(res.Moment1)).To(BeTrue())
							Expect(vecmath.IsFinite(res.Moment2)).To(BeTrue())
							Expect(vecmath.IsFinite(rec.TangOverlap)).To(BeTrue())
							Expect(vecmath.IsFinite(rec.TotalForce)).To(BeTrue())
						}
					}
				}
			}
		}
	})
})
