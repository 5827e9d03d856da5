// Package frame provides immutable rigid-body reference frames and the
// derivation chains used to position beamline elements in space.
//
// A [Frame] is an origin plus an orientation, held as a unit quaternion.
// New frames are built by deriving from an existing one: translations
// accumulate along the base frame's axes, and rotations act about the base
// frame's origin, turning the accumulated offset with them. This matches
// the survey convention of accelerator layout tools, where an element's
// exit frame is written as a list of offsets followed by a final rotation:
//
//	exit := center.Derive().
//		TranslateY(radius).
//		RotateZ(-opening).
//		Frame()
//
// Frames are values. Deriving never mutates the base, and the zero Frame
// is usable: it sits at the global origin with no rotation.
package frame

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/beamforge/pkg/units"
)

// Frame is a right-handed rigid-body frame: an origin in global coordinates
// and an orientation mapping frame-local vectors to global ones.
type Frame struct {
	origin r3.Vec
	rot    r3.Rotation
}

// Identity returns the frame at the global origin with no rotation.
func Identity() Frame {
	return Frame{rot: r3.Rotation{Real: 1}}
}

// At returns a frame at the given planar position with the given heading,
// lying flat in the horizontal plane. It is a convenience for survey
// starting points.
func At(x, y units.Length, heading units.Angle) Frame {
	return Identity().Derive().
		TranslateX(x).
		TranslateY(y).
		RotateZ(heading).
		Frame()
}

// rotation returns the frame's orientation, treating the zero value as the
// identity rotation so that Frame{} is usable.
func (f Frame) rotation() r3.Rotation {
	if quat.Abs(quat.Number(f.rot)) == 0 {
		return r3.Rotation{Real: 1}
	}
	return f.rot
}

// Origin returns the frame origin in global coordinates.
func (f Frame) Origin() r3.Vec { return f.origin }

// X returns the global x coordinate of the frame origin.
func (f Frame) X() units.Length { return units.Meters(f.origin.X) }

// Y returns the global y coordinate of the frame origin.
func (f Frame) Y() units.Length { return units.Meters(f.origin.Y) }

// Z returns the global z coordinate of the frame origin.
func (f Frame) Z() units.Length { return units.Meters(f.origin.Z) }

// XAxis returns the frame's local x axis as a unit vector in global
// coordinates. The x axis points along the nominal beam direction.
func (f Frame) XAxis() r3.Vec { return f.rotation().Rotate(r3.Vec{X: 1}) }

// YAxis returns the frame's local y axis in global coordinates.
func (f Frame) YAxis() r3.Vec { return f.rotation().Rotate(r3.Vec{Y: 1}) }

// ZAxis returns the frame's local z axis in global coordinates.
func (f Frame) ZAxis() r3.Vec { return f.rotation().Rotate(r3.Vec{Z: 1}) }

// Heading returns the in-plane rotation of the frame about the global z
// axis, measured from the global x axis to the frame's x axis.
func (f Frame) Heading() units.Angle {
	x := f.XAxis()
	return units.Radians(math.Atan2(x.Y, x.X))
}

// Angles returns the frame orientation as Tait-Bryan angles (rotations
// about the global x, y and z axes, composed z-y-x).
func (f Frame) Angles() (tx, ty, tz units.Angle) {
	ex := f.XAxis()
	ey := f.YAxis()
	ez := f.ZAxis()

	sy := ex.Z
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}

	tx = units.Radians(math.Atan2(ey.Z, ez.Z))
	ty = units.Radians(-math.Asin(sy))
	tz = units.Radians(math.Atan2(ex.Y, ex.X))
	return tx, ty, tz
}

// Equal reports whether two frames coincide within tol: origins within tol
// meters and orientations within tol, accounting for the quaternion double
// cover (q and -q describe the same rotation).
func (f Frame) Equal(g Frame, tol float64) bool {
	if r3.Norm(r3.Sub(f.origin, g.origin)) > tol {
		return false
	}
	qa := normalize(quat.Number(f.rotation()))
	qb := normalize(quat.Number(g.rotation()))
	d := math.Min(quat.Abs(quat.Sub(qa, qb)), quat.Abs(quat.Add(qa, qb)))
	return d <= tol
}

// String formats the frame origin and heading for logs and error messages.
func (f Frame) String() string {
	return fmt.Sprintf("(%.6g, %.6g, %.6g; %.6g deg)",
		f.origin.X, f.origin.Y, f.origin.Z, f.Heading().Deg())
}

func normalize(q quat.Number) quat.Number {
	a := quat.Abs(q)
	if a == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/a, q)
}

// Derivation accumulates translations and rotations relative to a base
// frame. Translations add along the base frame's axes; rotations act about
// the base frame's origin and turn the offset accumulated so far. Resolve
// the chain with [Derivation.Frame].
type Derivation struct {
	base   Frame
	offset r3.Vec
	rot    quat.Number
}

// Derive starts a derivation chain from f.
func (f Frame) Derive() *Derivation {
	return &Derivation{base: f, rot: quat.Number{Real: 1}}
}

// Translate adds v, expressed in base frame coordinates.
func (d *Derivation) Translate(v r3.Vec) *Derivation {
	d.offset = r3.Add(d.offset, v)
	return d
}

// TranslateX moves along the base frame's x axis.
func (d *Derivation) TranslateX(l units.Length) *Derivation {
	return d.Translate(r3.Vec{X: l.M()})
}

// TranslateY moves along the base frame's y axis.
func (d *Derivation) TranslateY(l units.Length) *Derivation {
	return d.Translate(r3.Vec{Y: l.M()})
}

// TranslateZ moves along the base frame's z axis.
func (d *Derivation) TranslateZ(l units.Length) *Derivation {
	return d.Translate(r3.Vec{Z: l.M()})
}

// RotateX rotates by a about the base frame's x axis.
func (d *Derivation) RotateX(a units.Angle) *Derivation {
	return d.rotate(a, r3.Vec{X: 1})
}

// RotateY rotates by a about the base frame's y axis.
func (d *Derivation) RotateY(a units.Angle) *Derivation {
	return d.rotate(a, r3.Vec{Y: 1})
}

// RotateZ rotates by a about the base frame's z axis. Positive angles turn
// the local x axis towards the local y axis.
func (d *Derivation) RotateZ(a units.Angle) *Derivation {
	return d.rotate(a, r3.Vec{Z: 1})
}

func (d *Derivation) rotate(a units.Angle, axis r3.Vec) *Derivation {
	r := r3.NewRotation(a.Rad(), axis)
	d.offset = r.Rotate(d.offset)
	d.rot = quat.Mul(quat.Number(r), d.rot)
	return d
}

// Frame resolves the chain into a new frame in global coordinates.
func (d *Derivation) Frame() Frame {
	base := d.base.rotation()
	return Frame{
		origin: r3.Add(d.base.origin, base.Rotate(d.offset)),
		rot:    r3.Rotation(normalize(quat.Mul(quat.Number(base), d.rot))),
	}
}
