package element

import (
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/units"
)

// EFBShape describes the curvature model of one effective field boundary:
// two curvature radii joined by two straight segments. The zero value maps
// to the tracer's flat-boundary defaults at construction.
type EFBShape struct {
	R1 units.Length
	U1 units.Length
	U2 units.Length
	R2 units.Length
}

// flatBoundary is the tracer's encoding of a straight EFB.
var flatBoundary = EFBShape{
	R1: units.Meters(1e9),
	U1: units.Meters(-1e9),
	U2: units.Meters(1e9),
	R2: units.Meters(1e9),
}

func boundaryOrDefault(b EFBShape) EFBShape {
	if b == (EFBShape{}) {
		return flatBoundary
	}
	return b
}

// DipoleParams configures a sector dipole in polar coordinates.
//
// Angles within the sector are azimuths measured from the entrance
// boundary. Zero-valued azimuths, the reference azimuth and the boundary
// radii take the tracer's conventional defaults at construction: the EFBs
// sit symmetrically about mid-sector and the boundary radii equal the
// reference radius. The zero KPos selects KPosMisaligned.
type DipoleParams struct {
	AngularOpening units.Angle  // total angular span of the magnet
	Radius         units.Length // reference radius

	ACent       units.Angle // azimuth of the field reference
	Field       units.Field // field at the reference radius
	FieldIndex  float64     // radial index
	SecondOrder float64
	ThirdOrder  float64

	EntryAzimuth  units.Angle // azimuth of the entrance EFB
	ExitAzimuth   units.Angle // azimuth of the exit EFB, measured backwards
	EntryWedge    units.Angle
	ExitWedge     units.Angle
	EntryFringe   units.Length
	ExitFringe    units.Length
	EntryShift    units.Length
	ExitShift     units.Length
	EntryBoundary EFBShape
	ExitBoundary  EFBShape

	EntryCoefficients [6]float64
	ExitCoefficients  [6]float64

	EntryRadius units.Length // boundary radius at the entrance
	EntryAngle  units.Angle  // entrance frame rotation
	ExitRadius  units.Length // boundary radius at the exit
	ExitAngle   units.Angle  // exit frame rotation
	KPos        KPos         // 1 or 2

	InterpolationOrder int
	Resolution         float64
	IntegrationStep    units.Length
}

// Dipole is a sector dipole swept about a center of curvature.
type Dipole struct {
	patch
	p DipoleParams
}

var (
	_ Element = (*Dipole)(nil)
	_ Curved  = (*Dipole)(nil)
)

// NewDipole returns a polar dipole with the given parameters.
func NewDipole(label string, p DipoleParams) (*Dipole, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return nil, err
	}
	if p.KPos == KPosUnset {
		p.KPos = KPosMisaligned
	}
	if err := errors.ValidatePolarAlignment(int(p.KPos)); err != nil {
		return nil, err
	}

	if p.EntryAzimuth == 0 {
		p.EntryAzimuth = p.AngularOpening / 2
	}
	if p.ExitAzimuth == 0 {
		p.ExitAzimuth = -p.AngularOpening / 2
	}
	if p.ACent == 0 {
		p.ACent = p.AngularOpening / 2
	}
	if p.EntryRadius == 0 {
		p.EntryRadius = p.Radius
	}
	if p.ExitRadius == 0 {
		p.ExitRadius = p.Radius
	}
	p.EntryBoundary = boundaryOrDefault(p.EntryBoundary)
	p.ExitBoundary = boundaryOrDefault(p.ExitBoundary)
	p.EntryCoefficients = coefficientsOrDefault(p.EntryCoefficients)
	p.ExitCoefficients = coefficientsOrDefault(p.ExitCoefficients)
	if p.InterpolationOrder == 0 {
		p.InterpolationOrder = 2
	}
	if p.Resolution == 0 {
		p.Resolution = 10
	}

	d := &Dipole{p: p}
	d.patch = newPatch(label, polar{
		opening:     p.AngularOpening,
		radius:      p.Radius,
		entryRadius: p.EntryRadius,
		entryAngle:  p.EntryAngle,
		exitRadius:  p.ExitRadius,
		exitAngle:   p.ExitAngle,
	}, arcLength(p.AngularOpening, p.Radius))
	return d, nil
}

// Keyword returns the tracer keyword.
func (d *Dipole) Keyword() string { return "DIPOLE" }

// Family returns the geometry family.
func (d *Dipole) Family() Family { return FamilyPolar }

// Params returns the parameters after construction-time defaults.
func (d *Dipole) Params() DipoleParams { return d.p }

// Radius returns the reference radius of the sweep.
func (d *Dipole) Radius() units.Length { return d.p.Radius }

// AngularOpening returns the total swept angle.
func (d *Dipole) AngularOpening() units.Angle { return d.p.AngularOpening }

// ReferenceAngles returns the azimuth of the field reference.
func (d *Dipole) ReferenceAngles() []units.Angle {
	return []units.Angle{d.p.ACent}
}
