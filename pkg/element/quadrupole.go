package element

import (
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/kinematics"
	"github.com/matzehuels/beamforge/pkg/units"
)

// QuadrupoleParams configures a quadrupole magnet.
//
// When a fringe field is set and the extents are left zero, the extents
// default to twice the aperture, the integration margin the tracer's
// documentation recommends. The zero KPos selects KPosAligned.
type QuadrupoleParams struct {
	Length   units.Length
	Aperture units.Length // pole-tip radius
	Field    units.Field  // field at the pole tip

	EntryExtent       units.Length
	ExitExtent        units.Length
	EntryFringe       units.Length
	ExitFringe        units.Length
	EntryCoefficients [6]float64
	ExitCoefficients  [6]float64

	OffsetX units.Length
	OffsetY units.Length
	Tilt    units.Angle
	KPos    KPos

	IntegrationStep units.Length
	Kinematics      *kinematics.Kinematics
}

// Quadrupole is a focusing magnet with a straight axis.
type Quadrupole struct {
	patch
	p QuadrupoleParams
}

var _ Element = (*Quadrupole)(nil)

// NewQuadrupole returns a quadrupole with the given parameters.
func NewQuadrupole(label string, p QuadrupoleParams) (*Quadrupole, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return nil, err
	}
	if p.KPos == KPosUnset {
		p.KPos = KPosAligned
	}
	if err := errors.ValidateAlignment(int(p.KPos)); err != nil {
		return nil, err
	}

	if p.EntryExtent == 0 && p.Aperture != 0 && p.EntryFringe != 0 {
		p.EntryExtent = 2 * p.Aperture
	}
	if p.ExitExtent == 0 && p.Aperture != 0 && p.ExitFringe != 0 {
		p.ExitExtent = 2 * p.Aperture
	}
	p.EntryCoefficients = coefficientsOrDefault(p.EntryCoefficients)
	p.ExitCoefficients = coefficientsOrDefault(p.ExitCoefficients)

	q := &Quadrupole{p: p}
	q.patch = newPatch(label, cartesian{
		label:       label,
		length:      p.Length,
		entryExtent: p.EntryExtent,
		exitExtent:  p.ExitExtent,
		offsetX:     p.OffsetX,
		offsetY:     p.OffsetY,
		tilt:        p.Tilt,
		mode:        p.KPos,
		kin:         p.Kinematics,
	}, p.Length)
	return q, nil
}

// Keyword returns the tracer keyword.
func (q *Quadrupole) Keyword() string { return "QUADRUPO" }

// Family returns the geometry family.
func (q *Quadrupole) Family() Family { return FamilyCartesian }

// Params returns the parameters after construction-time defaults.
func (q *Quadrupole) Params() QuadrupoleParams { return q.p }

// Gradient returns the field gradient at the pole tip, 0 for a zero
// aperture.
func (q *Quadrupole) Gradient() float64 {
	if q.p.Aperture == 0 {
		return 0
	}
	return q.p.Field.T() / q.p.Aperture.M()
}
