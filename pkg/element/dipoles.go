package element

import (
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/units"
)

// MaxEFBs is the largest number of effective field boundaries a polar
// multi-magnet can carry, the tracer's own limit.
const MaxEFBs = 5

// EFB describes one field region of a polar multi-magnet. Azimuths are
// measured from the entrance of the shared envelope; zero azimuths take
// the evenly-spread defaults at construction.
type EFB struct {
	ACent       units.Angle  // azimuth of the region's reference line
	DeltaRadius units.Length // radial offset from the envelope radius
	Field       units.Field
	FieldIndex  float64 // radial index, or gradient exponent for FFAGs

	EntryAzimuth units.Angle
	ExitAzimuth  units.Angle
	EntryWedge   units.Angle
	ExitWedge    units.Angle
	EntrySpiral  units.Angle // spiral-sector boundary angle
	ExitSpiral   units.Angle
	EntryFringe  units.Length
	ExitFringe   units.Length
	EntryShift   units.Length
	ExitShift    units.Length

	EntryCoefficients [6]float64
	ExitCoefficients  [6]float64
}

// DipolesParams configures a polar multi-magnet: up to MaxEFBs field
// regions sharing one angular envelope and reference radius.
//
// Count declares the number of field regions and defaults to len(EFBs);
// when both are given they must agree. The zero KPos selects
// KPosMisaligned.
type DipolesParams struct {
	Count          int
	AngularOpening units.Angle  // envelope span
	Radius         units.Length // envelope reference radius
	EFBs           []EFB

	EntryRadius units.Length
	EntryAngle  units.Angle
	ExitRadius  units.Length
	ExitAngle   units.Angle
	KPos        KPos // 1 or 2

	InterpolationDegree int // field interpolation scheme
	Resolution          float64
	IntegrationStep     units.Length
}

// polarMulti is the shared body of the multi-magnet polar elements.
type polarMulti struct {
	patch
	p DipolesParams
}

func newPolarMulti(label string, p DipolesParams) (polarMulti, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return polarMulti{}, err
	}

	// The declared region count and the EFB blocks must agree before any
	// frame is computed.
	if p.Count == 0 {
		p.Count = len(p.EFBs)
	}
	if p.Count != len(p.EFBs) {
		return polarMulti{}, errors.New(errors.ErrCodeInconsistent,
			"element %q declares %d field regions but provides %d EFB blocks", label, p.Count, len(p.EFBs))
	}
	if p.Count < 1 || p.Count > MaxEFBs {
		return polarMulti{}, errors.New(errors.ErrCodeInvalidInput,
			"element %q must have between 1 and %d field regions, got %d", label, MaxEFBs, p.Count)
	}

	if p.KPos == KPosUnset {
		p.KPos = KPosMisaligned
	}
	if err := errors.ValidatePolarAlignment(int(p.KPos)); err != nil {
		return polarMulti{}, err
	}

	// Unset azimuths spread the regions evenly across the envelope.
	n := p.Count
	at := p.AngularOpening
	for i := range p.EFBs {
		even := at/units.Angle(2*n) + units.Angle(i)*at/units.Angle(n)
		if p.EFBs[i].ACent == 0 {
			p.EFBs[i].ACent = even
		}
		if p.EFBs[i].EntryAzimuth == 0 {
			p.EFBs[i].EntryAzimuth = even
		}
		if p.EFBs[i].ExitAzimuth == 0 {
			p.EFBs[i].ExitAzimuth = -(at - even)
		}
	}
	if p.EntryRadius == 0 {
		p.EntryRadius = p.Radius
	}
	if p.ExitRadius == 0 {
		p.ExitRadius = p.Radius
	}
	if p.Resolution == 0 {
		p.Resolution = 10
	}
	if p.InterpolationDegree == 0 {
		p.InterpolationDegree = 2
	}

	m := polarMulti{p: p}
	m.patch = newPatch(label, polar{
		opening:     p.AngularOpening,
		radius:      p.Radius,
		entryRadius: p.EntryRadius,
		entryAngle:  p.EntryAngle,
		exitRadius:  p.ExitRadius,
		exitAngle:   p.ExitAngle,
	}, arcLength(p.AngularOpening, p.Radius))
	return m, nil
}

// Family returns the geometry family.
func (m *polarMulti) Family() Family { return FamilyPolarMulti }

// Params returns the parameters after construction-time defaults.
func (m *polarMulti) Params() DipolesParams { return m.p }

// Radius returns the envelope reference radius.
func (m *polarMulti) Radius() units.Length { return m.p.Radius }

// AngularOpening returns the envelope span.
func (m *polarMulti) AngularOpening() units.Angle { return m.p.AngularOpening }

// ReferenceAngles returns each region's reference azimuth.
func (m *polarMulti) ReferenceAngles() []units.Angle {
	angles := make([]units.Angle, len(m.p.EFBs))
	for i, efb := range m.p.EFBs {
		angles[i] = efb.ACent
	}
	return angles
}

// Dipoles is a polar multi-magnet of radially indexed dipole regions.
type Dipoles struct{ polarMulti }

var (
	_ Element = (*Dipoles)(nil)
	_ Curved  = (*Dipoles)(nil)
)

// NewDipoles returns a polar multi-magnet with the given parameters.
func NewDipoles(label string, p DipolesParams) (*Dipoles, error) {
	b, err := newPolarMulti(label, p)
	if err != nil {
		return nil, err
	}
	return &Dipoles{polarMulti: b}, nil
}

// Keyword returns the tracer keyword.
func (d *Dipoles) Keyword() string { return "DIPOLES" }

// FFAG is a radial-sector fixed-field alternating-gradient magnet.
type FFAG struct{ polarMulti }

var (
	_ Element = (*FFAG)(nil)
	_ Curved  = (*FFAG)(nil)
)

// NewFFAG returns a radial-sector FFAG magnet with the given parameters.
func NewFFAG(label string, p DipolesParams) (*FFAG, error) {
	b, err := newPolarMulti(label, p)
	if err != nil {
		return nil, err
	}
	return &FFAG{polarMulti: b}, nil
}

// Keyword returns the tracer keyword.
func (f *FFAG) Keyword() string { return "FFAG" }

// FFAGSpirale is a spiral-sector fixed-field alternating-gradient magnet.
type FFAGSpirale struct{ polarMulti }

var (
	_ Element = (*FFAGSpirale)(nil)
	_ Curved  = (*FFAGSpirale)(nil)
)

// NewFFAGSpirale returns a spiral-sector FFAG magnet with the given
// parameters.
func NewFFAGSpirale(label string, p DipolesParams) (*FFAGSpirale, error) {
	b, err := newPolarMulti(label, p)
	if err != nil {
		return nil, err
	}
	return &FFAGSpirale{polarMulti: b}, nil
}

// Keyword returns the tracer keyword.
func (f *FFAGSpirale) Keyword() string { return "FFAG-SPI" }

// ReferenceAngles returns each region's reference azimuth. Spiral sectors
// reference the middle of the envelope, so each azimuth is shifted by half
// the opening.
func (f *FFAGSpirale) ReferenceAngles() []units.Angle {
	angles := make([]units.Angle, len(f.p.EFBs))
	for i, efb := range f.p.EFBs {
		angles[i] = efb.ACent + f.p.AngularOpening/2
	}
	return angles
}
