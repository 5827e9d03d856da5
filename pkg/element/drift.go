package element

import (
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/units"
)

// Drift is a field-free straight section.
type Drift struct {
	patch
}

var _ Element = (*Drift)(nil)

// NewDrift returns a drift of the given length.
func NewDrift(label string, length units.Length) (*Drift, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return nil, err
	}
	d := &Drift{}
	d.patch = newPatch(label, cartesian{
		label:  label,
		length: length,
		mode:   KPosAligned,
	}, length)
	return d, nil
}

// Keyword returns the tracer keyword.
func (d *Drift) Keyword() string { return "DRIFT" }

// Family returns the geometry family.
func (d *Drift) Family() Family { return FamilyCartesian }

// EntryS returns the path length at the element entrance. The tracer's
// step output only starts one integration step inside a drift, so the
// entrance is padded back by the leading step.
func (d *Drift) EntryS() units.Length {
	t := d.trajectory()
	if t == nil || len(t.S) < 2 {
		return d.patch.EntryS()
	}
	return t.MinS() - (t.S[1] - t.S[0])
}
