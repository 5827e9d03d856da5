package element

import (
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/kinematics"
	"github.com/matzehuels/beamforge/pkg/units"
)

// engeDefaults is the fringe-field coefficient set assumed when a params
// struct leaves the coefficients zero.
var engeDefaults = [6]float64{0, 1, 0, 0, 0, 0}

func coefficientsOrDefault(c [6]float64) [6]float64 {
	if c == ([6]float64{}) {
		return engeDefaults
	}
	return c
}

// BendParams configures a sector bending magnet with a straight reference
// axis.
//
// Length is interpreted as the arc along the bent reference trajectory and
// converted to the equivalent chord at construction; set ChordLength to
// true to pass the chord directly. The conversion needs Kinematics and a
// non-zero Field.
//
// The zero KPos selects KPosMisaligned, the conventional mode for bends.
type BendParams struct {
	Length      units.Length
	ChordLength bool
	Field       units.Field // B1
	Skew        units.Angle // rotation of the field about the beam axis

	EntryExtent       units.Length // integration zone ahead of the body
	ExitExtent        units.Length
	EntryFringe       units.Length // fringe-field extent at the entrance
	ExitFringe        units.Length
	EntryWedge        units.Angle
	ExitWedge         units.Angle
	EntryCoefficients [6]float64
	ExitCoefficients  [6]float64

	OffsetX units.Length
	OffsetY units.Length
	Tilt    units.Angle
	KPos    KPos

	IntegrationStep units.Length
	Kinematics      *kinematics.Kinematics
}

// Bend is a sector bending magnet expressed in cartesian coordinates.
type Bend struct {
	patch
	p BendParams
}

var _ Element = (*Bend)(nil)

// NewBend returns a bend with the given parameters. Unless ChordLength is
// set, the length is converted from arc to chord, which requires
// kinematics and a non-zero field.
func NewBend(label string, p BendParams) (*Bend, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return nil, err
	}
	if p.KPos == KPosUnset {
		p.KPos = KPosMisaligned
	}
	if err := errors.ValidateAlignment(int(p.KPos)); err != nil {
		return nil, err
	}

	// Without a fringe field there is nothing to integrate ahead of the
	// body; drop the extents.
	if p.EntryFringe == 0 {
		p.EntryExtent = 0
	}
	if p.ExitFringe == 0 {
		p.ExitExtent = 0
	}
	p.EntryCoefficients = coefficientsOrDefault(p.EntryCoefficients)
	p.ExitCoefficients = coefficientsOrDefault(p.ExitCoefficients)

	if !p.ChordLength {
		chord, err := chordFromArc(label, p.Length, p.Field, p.Kinematics)
		if err != nil {
			return nil, err
		}
		p.Length = chord
	}

	b := &Bend{p: p}
	b.patch = newPatch(label, cartesian{
		label:       label,
		length:      p.Length,
		entryExtent: p.EntryExtent,
		exitExtent:  p.ExitExtent,
		offsetX:     p.OffsetX,
		offsetY:     p.OffsetY,
		tilt:        p.Tilt,
		mode:        p.KPos,
		field:       p.Field,
		kin:         p.Kinematics,
	}, p.Length)
	return b, nil
}

// Keyword returns the tracer keyword.
func (b *Bend) Keyword() string { return "BEND" }

// Family returns the geometry family.
func (b *Bend) Family() Family { return FamilyCartesian }

// Params returns the parameters after construction-time defaults, with
// Length holding the chord when arc conversion was applied.
func (b *Bend) Params() BendParams { return b.p }
