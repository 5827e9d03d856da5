package element

import (
	"math"

	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/frame"
	"github.com/matzehuels/beamforge/pkg/kinematics"
	"github.com/matzehuels/beamforge/pkg/units"
)

// cartesian derives the frames of straight-axis elements. All positioning
// conventions share the same body: the element extends along the patched
// entry's x axis by its magnetic length plus the field extents integrated
// on either side.
type cartesian struct {
	label       string
	length      units.Length // magnetic length along the axis
	entryExtent units.Length // integration zone upstream of the body
	exitExtent  units.Length // integration zone downstream of the body
	offsetX     units.Length
	offsetY     units.Length
	tilt        units.Angle
	mode        KPos
	field       units.Field // bend field, consulted by KPosAuto
	kin         *kinematics.Kinematics
}

// autoAngle is the entrance and exit rotation KPosAuto derives from the
// bend strength: asin(L·B / 2Brho).
func (c cartesian) autoAngle() (units.Angle, error) {
	if c.kin == nil {
		return 0, errors.New(errors.ErrCodeMissingKinematics,
			"element %q uses automatic positioning but has no kinematics", c.label)
	}
	return units.Radians(math.Asin(c.length.M() * c.field.T() / (2 * c.kin.Brho().TM()))), nil
}

func (c cartesian) patchEntry(entry frame.Frame) (frame.Frame, error) {
	if c.mode == KPosAuto {
		a, err := c.autoAngle()
		if err != nil {
			return frame.Frame{}, err
		}
		return entry.Derive().
			TranslateX(-c.entryExtent).
			RotateZ(-a).
			Frame(), nil
	}
	return entry.Derive().
		TranslateX(-c.entryExtent).
		TranslateX(c.offsetX).
		TranslateY(c.offsetY).
		RotateZ(-c.tilt).
		Frame(), nil
}

func (c cartesian) patchCenter(entry, _ frame.Frame) (frame.Frame, error) {
	return entry, nil
}

func (c cartesian) patchExit(_, entryPatched, _ frame.Frame) (frame.Frame, error) {
	return entryPatched.Derive().
		TranslateX(c.length + c.entryExtent).
		Frame(), nil
}

func (c cartesian) patchExitPatched(entry, exit frame.Frame) (frame.Frame, error) {
	switch c.mode {
	case KPosUnset, KPosMisaligned:
		// These modes patch the exit against the raw entry frame,
		// matching the tracer's convention.
		return entry.Derive().
			TranslateX(c.length).
			TranslateX(-c.exitExtent).
			Frame(), nil
	case KPosAuto:
		a, err := c.autoAngle()
		if err != nil {
			return frame.Frame{}, err
		}
		return exit.Derive().RotateZ(-a).Frame(), nil
	default: // KPosAligned
		return exit.Derive().TranslateX(-c.exitExtent).Frame(), nil
	}
}

// chordFromArc converts an arc length to the equivalent straight magnetic
// length for a bend of the given field at the reference rigidity:
//
//	rho = Brho / B,  phi = arc / rho,  chord = 2·rho·sin(phi/2)
func chordFromArc(label string, arc units.Length, field units.Field, kin *kinematics.Kinematics) (units.Length, error) {
	if kin == nil {
		return 0, errors.New(errors.ErrCodeMissingKinematics,
			"element %q: arc length conversion requested but no kinematics provided", label)
	}
	if field == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput,
			"element %q: arc length conversion requires a non-zero field", label)
	}
	rho := kin.Brho().TM() / field.T()
	phi := arc.M() / rho
	return units.Meters(2 * rho * math.Sin(phi/2)), nil
}
