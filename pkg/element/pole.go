package element

import (
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/kinematics"
	"github.com/matzehuels/beamforge/pkg/units"
)

// PoleParams configures the single-component multipole magnets, sextupole
// through dodecapole. The zero KPos selects KPosAligned.
type PoleParams struct {
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

// pole is the shared body of the single-component multipoles.
type pole struct {
	patch
	keyword string
	p       PoleParams
}

func newPole(label, keyword string, p PoleParams) (pole, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return pole{}, err
	}
	if p.KPos == KPosUnset {
		p.KPos = KPosAligned
	}
	if err := errors.ValidateAlignment(int(p.KPos)); err != nil {
		return pole{}, err
	}
	p.EntryCoefficients = coefficientsOrDefault(p.EntryCoefficients)
	p.ExitCoefficients = coefficientsOrDefault(p.ExitCoefficients)

	m := pole{keyword: keyword, p: p}
	m.patch = newPatch(label, cartesian{
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
	return m, nil
}

// Keyword returns the tracer keyword.
func (m *pole) Keyword() string { return m.keyword }

// Family returns the geometry family.
func (m *pole) Family() Family { return FamilyCartesian }

// Params returns the parameters after construction-time defaults.
func (m *pole) Params() PoleParams { return m.p }

// Sextupole is a six-pole magnet.
type Sextupole struct{ pole }

var _ Element = (*Sextupole)(nil)

// NewSextupole returns a sextupole with the given parameters.
func NewSextupole(label string, p PoleParams) (*Sextupole, error) {
	b, err := newPole(label, "SEXTUPOL", p)
	if err != nil {
		return nil, err
	}
	return &Sextupole{pole: b}, nil
}

// Octupole is an eight-pole magnet.
type Octupole struct{ pole }

var _ Element = (*Octupole)(nil)

// NewOctupole returns an octupole with the given parameters.
func NewOctupole(label string, p PoleParams) (*Octupole, error) {
	b, err := newPole(label, "OCTUPOLE", p)
	if err != nil {
		return nil, err
	}
	return &Octupole{pole: b}, nil
}

// Decapole is a ten-pole magnet.
type Decapole struct{ pole }

var _ Element = (*Decapole)(nil)

// NewDecapole returns a decapole with the given parameters.
func NewDecapole(label string, p PoleParams) (*Decapole, error) {
	b, err := newPole(label, "DECAPOLE", p)
	if err != nil {
		return nil, err
	}
	return &Decapole{pole: b}, nil
}

// Dodecapole is a twelve-pole magnet.
type Dodecapole struct{ pole }

var _ Element = (*Dodecapole)(nil)

// NewDodecapole returns a dodecapole with the given parameters.
func NewDodecapole(label string, p PoleParams) (*Dodecapole, error) {
	b, err := newPole(label, "DODECAPO", p)
	if err != nil {
		return nil, err
	}
	return &Dodecapole{pole: b}, nil
}
