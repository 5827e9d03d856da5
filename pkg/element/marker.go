package element

import (
	"github.com/matzehuels/beamforge/pkg/errors"
)

// Marker is a zero-length reference point in the beamline.
type Marker struct {
	patch
}

var _ Element = (*Marker)(nil)

// NewMarker returns a marker with the given label.
func NewMarker(label string) (*Marker, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return nil, err
	}
	m := &Marker{}
	m.patch = newPatch(label, point{}, 0)
	return m, nil
}

// Keyword returns the tracer keyword.
func (m *Marker) Keyword() string { return "MARKER" }

// Family returns the geometry family.
func (m *Marker) Family() Family { return FamilyPoint }
