package element

import (
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/kinematics"
	"github.com/matzehuels/beamforge/pkg/units"
)

// MultipoleParams configures a combined-function magnet carrying dipole
// through twenty-pole components. The zero KPos selects KPosAligned.
type MultipoleParams struct {
	Length   units.Length
	Aperture units.Length
	// Fields holds the pole-tip field of each component, dipole first.
	Fields [10]units.Field

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

// Multipole is a combined-function magnet with a straight axis.
type Multipole struct {
	patch
	p MultipoleParams
}

var _ Element = (*Multipole)(nil)

// NewMultipole returns a multipole with the given parameters.
func NewMultipole(label string, p MultipoleParams) (*Multipole, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return nil, err
	}
	if p.KPos == KPosUnset {
		p.KPos = KPosAligned
	}
	if err := errors.ValidateAlignment(int(p.KPos)); err != nil {
		return nil, err
	}
	p.EntryCoefficients = coefficientsOrDefault(p.EntryCoefficients)
	p.ExitCoefficients = coefficientsOrDefault(p.ExitCoefficients)

	m := &Multipole{p: p}
	m.patch = newPatch(label, cartesian{
		label:       label,
		length:      p.Length,
		entryExtent: p.EntryExtent,
		exitExtent:  p.ExitExtent,
		offsetX:     p.OffsetX,
		offsetY:     p.OffsetY,
		tilt:        p.Tilt,
		mode:        p.KPos,
		field:       p.Fields[0],
		kin:         p.Kinematics,
	}, p.Length)
	return m, nil
}

// Keyword returns the tracer keyword.
func (m *Multipole) Keyword() string { return "MULTIPOL" }

// Family returns the geometry family.
func (m *Multipole) Family() Family { return FamilyCartesian }

// Params returns the parameters after construction-time defaults.
func (m *Multipole) Params() MultipoleParams { return m.p }
