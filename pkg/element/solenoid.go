package element

import (
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/kinematics"
	"github.com/matzehuels/beamforge/pkg/units"
)

// SolenoidParams configures a solenoid. The zero KPos selects KPosAligned.
type SolenoidParams struct {
	Length   units.Length
	Aperture units.Length
	Field    units.Field // axial field

	EntryExtent units.Length
	ExitExtent  units.Length

	OffsetX units.Length
	OffsetY units.Length
	Tilt    units.Angle
	KPos    KPos

	IntegrationStep units.Length
	Kinematics      *kinematics.Kinematics
}

// Solenoid is a solenoid magnet with a straight axis.
type Solenoid struct {
	patch
	p SolenoidParams
}

var _ Element = (*Solenoid)(nil)

// NewSolenoid returns a solenoid with the given parameters.
func NewSolenoid(label string, p SolenoidParams) (*Solenoid, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return nil, err
	}
	if p.KPos == KPosUnset {
		p.KPos = KPosAligned
	}
	if err := errors.ValidateAlignment(int(p.KPos)); err != nil {
		return nil, err
	}

	s := &Solenoid{p: p}
	s.patch = newPatch(label, cartesian{
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
	return s, nil
}

// Keyword returns the tracer keyword.
func (s *Solenoid) Keyword() string { return "SOLENOID" }

// Family returns the geometry family.
func (s *Solenoid) Family() Family { return FamilyCartesian }

// Params returns the parameters after construction-time defaults.
func (s *Solenoid) Params() SolenoidParams { return s.p }
