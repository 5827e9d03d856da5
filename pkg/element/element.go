package element

import (
	"github.com/matzehuels/beamforge/pkg/frame"
	"github.com/matzehuels/beamforge/pkg/units"
)

// Family identifies an element's geometry family, which determines how its
// derived frames are computed.
type Family int

const (
	// FamilyPoint elements have zero extent; all frames coincide.
	FamilyPoint Family = iota
	// FamilyCartesian elements have a straight reference axis.
	FamilyCartesian
	// FamilyPolar elements are swept about a center of curvature.
	FamilyPolar
	// FamilyPolarMulti elements share one polar envelope between several
	// effective field boundaries.
	FamilyPolarMulti
)

// String implements fmt.Stringer.
func (f Family) String() string {
	switch f {
	case FamilyPoint:
		return "point"
	case FamilyCartesian:
		return "cartesian"
	case FamilyPolar:
		return "polar"
	case FamilyPolarMulti:
		return "polar-multi"
	default:
		return "unknown"
	}
}

// KPos selects the tracer's element positioning convention.
type KPos int

const (
	// KPosUnset is the legacy convention: transverse offsets apply at the
	// entrance and the exit patch is rebuilt from the raw entry frame.
	KPosUnset KPos = 0
	// KPosAligned places the element on the reference axis; offsets
	// describe a misalignment and the exit patch follows the exit frame.
	KPosAligned KPos = 1
	// KPosMisaligned places the element by explicit offsets, patching the
	// exit from the raw entry frame like KPosUnset.
	KPosMisaligned KPos = 2
	// KPosAuto derives the entrance and exit rotations of a bend from its
	// field, length and the reference rigidity.
	KPosAuto KPos = 3
)

// Element is a positionable beamline element.
type Element interface {
	// Label returns the element's unique name.
	Label() string
	// Keyword returns the tracer keyword the element renders to.
	Keyword() string
	// Family returns the geometry family.
	Family() Family
	// Length returns the nominal length along the reference path.
	Length() units.Length

	// Place stores a copy of f as the entry frame, clearing any previous
	// placement first.
	Place(f frame.Frame)
	// ClearPlacement drops the entry frame and every derived frame.
	ClearPlacement()
	// Placed reports whether the element currently has an entry frame.
	Placed() bool

	// Entry returns the stored entry frame.
	Entry() (frame.Frame, error)
	// EntryPatched returns the entry frame corrected for positioning.
	EntryPatched() (frame.Frame, error)
	// Center returns the element's reference frame.
	Center() (frame.Frame, error)
	// Exit returns the frame at the far end of the element body.
	Exit() (frame.Frame, error)
	// ExitPatched returns the frame the next element is placed against.
	ExitPatched() (frame.Frame, error)

	// SetTrajectory attaches the reference trajectory recovered from a
	// tracer run.
	SetTrajectory(t *Trajectory)
	// EntryS returns the path length at the element entrance, 0 without a
	// trajectory.
	EntryS() units.Length
	// ExitS returns the path length at the element exit, 0 without a
	// trajectory.
	ExitS() units.Length
	// OpticalLength returns the path length covered inside the element.
	OpticalLength() units.Length
}

// Curved is implemented by polar elements, whose body sweeps an arc about
// a center of curvature. Renderers use it to draw sectors instead of boxes.
type Curved interface {
	Element
	// Radius returns the reference radius of the sweep.
	Radius() units.Length
	// AngularOpening returns the total swept angle.
	AngularOpening() units.Angle
	// ReferenceAngles returns the azimuths, from the entrance boundary, of
	// each field region's reference line.
	ReferenceAngles() []units.Angle
}
