package geometry

import (
	"fmt"
	"sort"

	"github.com/san-kum/demsim/internal/dynamo"
	"github.com/san-kum/demsim/internal/vecmath"
)

// Interval is a span of time with constant translational and rotational velocity.
type Interval struct {
	TimeBeg          float64 `yaml:"time_beg" json:"time_beg"`
	TimeEnd          float64 `yaml:"time_end" json:"time_end"`
	Velocity         Vec3    `yaml:"velocity" json:"velocity"`
	RotationVelocity Vec3    `yaml:"rotation_velocity" json:"rotation_velocity"`
	RotationCenter   Vec3    `yaml:"rotation_center" json:"rotation_center"`
}

// Motion describes how a geometry moves over time. Outside every interval
// the geometry is at rest.
type Motion struct {
	Intervals []Interval `yaml:"intervals" json:"intervals"`
}

// Validate sorts the intervals and rejects empty or overlapping ones.
func (m *Motion) Validate() error {
	sort.Slice(m.Intervals, func(i, j int) bool { return m.Intervals[i].TimeBeg < m.Intervals[j].TimeBeg })
	for i, iv := range m.Intervals {
		if iv.TimeEnd <= iv.TimeBeg {
			return fmt.Errorf("interval [%g, %g]: %w", iv.TimeBeg, iv.TimeEnd, dynamo.ErrInvalidGeometry)
		}
		if i > 0 && iv.TimeBeg < m.Intervals[i-1].TimeEnd {
			return fmt.Errorf("[%g, %g] and [%g, %g]: %w",
				m.Intervals[i-1].TimeBeg, m.Intervals[i-1].TimeEnd, iv.TimeBeg, iv.TimeEnd, dynamo.ErrOverlappingMotion)
		}
	}
	return nil
}

func (m *Motion) IsEmpty() bool { return len(m.Intervals) == 0 }

// Active returns the interval containing t, if any. Intervals are half open.
func (m *Motion) Active(t float64) (Interval, bool) {
	for _, iv := range m.Intervals {
		if t >= iv.TimeBeg && t < iv.TimeEnd {
			return iv, true
		}
	}
	return Interval{}, false
}

// VelocitiesAt returns the velocity, rotation velocity and rotation center in
// effect at t. The center travels with the interval's translation, so
// vel + rotVel x (p - rotCenter) is the velocity of any point p of the mesh.
func (m *Motion) VelocitiesAt(t float64) (vel, rotVel, rotCenter Vec3) {
	iv, ok := m.Active(t)
	if !ok {
		return Vec3{}, Vec3{}, Vec3{}
	}
	return iv.Velocity, iv.RotationVelocity, iv.RotationCenter.Add(iv.Velocity.Mul(t - iv.TimeBeg))
}

// Pose is the rigid transform p -> Rotation*p + Offset.
type Pose struct {
	Rotation Mat3
	Offset   Vec3
}

func IdentityPose() Pose { return Pose{Rotation: vecmath.Identity()} }

func (p Pose) Apply(v Vec3) Vec3 { return p.Rotation.Mul3x1(v).Add(p.Offset) }

// PoseAt composes the displacement of every interval that started before t.
// Within an interval the rotation about its center is applied before the
// translation.
func (m *Motion) PoseAt(t float64) Pose {
	pose := IdentityPose()
	for _, iv := range m.Intervals {
		if t <= iv.TimeBeg {
			break
		}
		dur := min(t, iv.TimeEnd) - iv.TimeBeg
		rot := vecmath.RotationFromVector(iv.RotationVelocity.Mul(dur))
		c := iv.RotationCenter
		pose.Rotation = rot.Mul3(pose.Rotation)
		pose.Offset = rot.Mul3x1(pose.Offset.Sub(c)).Add(c).Add(iv.Velocity.Mul(dur))
	}
	return pose
}
