package element

import (
	"math"

	"github.com/matzehuels/beamforge/pkg/frame"
	"github.com/matzehuels/beamforge/pkg/units"
)

// polar derives the frames of curved elements. The element body sweeps an
// arc of the opening angle about a center of curvature one radius to the
// inside of the patched entry.
type polar struct {
	opening     units.Angle  // total angular span
	radius      units.Length // reference radius
	entryRadius units.Length // radius at the entrance boundary
	entryAngle  units.Angle  // entrance frame rotation
	exitRadius  units.Length // radius at the exit boundary
	exitAngle   units.Angle  // exit frame rotation
}

func (p polar) patchEntry(entry frame.Frame) (frame.Frame, error) {
	return entry.Derive().
		TranslateY(p.radius - p.entryRadius).
		RotateZ(-p.entryAngle).
		Frame(), nil
}

func (p polar) patchCenter(_, entryPatched frame.Frame) (frame.Frame, error) {
	return entryPatched.Derive().
		TranslateY(-p.radius).
		Frame(), nil
}

func (p polar) patchExit(_, _, center frame.Frame) (frame.Frame, error) {
	// The exit is the entry boundary swept by the full opening about the
	// center of curvature.
	return center.Derive().
		TranslateY(p.radius).
		RotateZ(-p.opening).
		Frame(), nil
}

func (p polar) patchExitPatched(_, exit frame.Frame) (frame.Frame, error) {
	return exit.Derive().
		TranslateY(p.exitRadius - p.radius).
		RotateZ(p.exitAngle).
		Frame(), nil
}

// arcLength is the nominal length of a polar element: opening times radius.
func arcLength(opening units.Angle, radius units.Length) units.Length {
	return units.Meters(opening.Rad() * radius.M())
}

// PolarDriftLength returns the straight drift hidden between a polar
// magnet's mechanical span and its pole span.
func PolarDriftLength(radius units.Length, magnet, poles units.Angle) units.Length {
	return units.Meters(radius.M() * math.Tan((magnet.Rad()-poles.Rad())/2))
}

// PolarEFBOffset returns the distance from the center of curvature to the
// effective field boundary of a polar magnet whose poles span less than
// its mechanical opening.
func PolarEFBOffset(radius units.Length, magnet, poles units.Angle) units.Length {
	return units.Meters(radius.M() / math.Cos((magnet.Rad()-poles.Rad())/2))
}

// PolarEFBAngle returns the angle of the effective field boundary with
// respect to the mechanical boundary.
func PolarEFBAngle(magnet, poles units.Angle) units.Angle {
	return units.Radians(-(magnet.Rad() - poles.Rad()) / 2)
}
