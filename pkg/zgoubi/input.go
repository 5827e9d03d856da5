package zgoubi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/beamforge/pkg/element"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/kinematics"
	"github.com/matzehuels/beamforge/pkg/line"
	"github.com/matzehuels/beamforge/pkg/units"
)

// elementaryCharge is the proton charge in coulomb.
const elementaryCharge = 1.602176634e-19

// Input is one ready-to-run tracer deck.
type Input struct {
	Name string // deck title, also names the work directory
	Deck string // zgoubi.dat content
}

// Render produces the input deck for a line at the reference momentum.
// Elements render to their keyword blocks in sequence order; an element
// type without a block is a configuration error.
func Render(name string, l *line.Line, kin *kinematics.Kinematics) (string, error) {
	return renderDeck(name, l, kin, 0)
}

// Scan builds one input per relative momentum offset dp, shifting the
// reference trajectory to p0*(1+dp). Inputs are named after the deck with
// their offset index appended.
func Scan(name string, l *line.Line, kin *kinematics.Kinematics, offsets []float64) ([]Input, error) {
	if len(offsets) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scan %q: at least one momentum offset required", name)
	}
	ins := make([]Input, 0, len(offsets))
	for i, dp := range offsets {
		n := fmt.Sprintf("%s-%03d", name, i)
		deck, err := renderDeck(n, l, kin, dp)
		if err != nil {
			return nil, err
		}
		ins = append(ins, Input{Name: n, Deck: deck})
	}
	return ins, nil
}

func renderDeck(name string, l *line.Line, kin *kinematics.Kinematics, dp float64) (string, error) {
	if kin == nil {
		return "", errors.New(errors.ErrCodeMissingKinematics, "deck %q: reference kinematics required", name)
	}
	var b strings.Builder
	writePreamble(&b, name, kin, dp)
	for _, el := range l.Elements() {
		if err := writeBlock(&b, name, el); err != nil {
			return "", err
		}
	}
	b.WriteString("'END'\n")
	return b.String(), nil
}

// writePreamble emits the title, the OBJET reference trajectory and the
// PARTICUL species data. BORO is the reference rigidity in kG*cm.
func writePreamble(b *strings.Builder, name string, kin *kinematics.Kinematics, dp float64) {
	p := kin.Particle()
	fmt.Fprintf(b, "%s\n", name)
	b.WriteString("'OBJET'\n")
	fmt.Fprintf(b, "%s\n", f12(kin.Brho().KGCM()))
	b.WriteString("5\n")
	b.WriteString("0.001 0.001 0.001 0.001 0.001 0.0001\n")
	fmt.Fprintf(b, "0.0 0.0 0.0 0.0 0.0 %s\n", num(1+dp))
	b.WriteString("'PARTICUL'\n")
	fmt.Fprintf(b, "%s %s 0.0 0.0 0.0\n", f12(p.Mass.MeV()), f12(float64(p.Charge)*elementaryCharge))
}

func writeBlock(b *strings.Builder, name string, el element.Element) error {
	switch v := el.(type) {
	case *element.Marker:
		fmt.Fprintf(b, "'MARKER' %s\n", v.Label())
	case *element.Drift:
		fmt.Fprintf(b, "'DRIFT' %s\n%s\n", v.Label(), f12(v.Length().CM()))
	case *element.Bend:
		writeBend(b, v)
	case *element.Quadrupole:
		writeQuadrupole(b, v)
	case *element.Sextupole:
		writePole(b, v.Keyword(), v.Label(), v.Params())
	case *element.Octupole:
		writePole(b, v.Keyword(), v.Label(), v.Params())
	case *element.Decapole:
		writePole(b, v.Keyword(), v.Label(), v.Params())
	case *element.Dodecapole:
		writePole(b, v.Keyword(), v.Label(), v.Params())
	case *element.Multipole:
		writeMultipole(b, v)
	case *element.Solenoid:
		writeSolenoid(b, v)
	case *element.Dipole:
		writeDipole(b, v)
	case *element.Dipoles:
		writeDipoles(b, v)
	case *element.FFAG:
		writeFFAG(b, v)
	case *element.FFAGSpirale:
		writeSpirale(b, v)
	default:
		return errors.New(errors.ErrCodeUnsupported,
			"deck %q: element %q (%s) has no input block", name, el.Label(), el.Keyword())
	}
	return nil
}

func writeBend(b *strings.Builder, v *element.Bend) {
	p := v.Params()
	fmt.Fprintf(b, "'BEND' %s\n", v.Label())
	b.WriteString("0\n")
	fmt.Fprintf(b, "%s %s %s\n", f12(p.Length.CM()), f12(p.Skew.Rad()), f12(p.Field.KG()))
	fmt.Fprintf(b, "%s %s %s\n", f12(p.EntryExtent.CM()), f12(p.EntryFringe.CM()), f12(p.EntryWedge.Rad()))
	fmt.Fprintf(b, "%s\n", coeffs6(p.EntryCoefficients))
	fmt.Fprintf(b, "%s %s %s\n", f12(p.ExitExtent.CM()), f12(p.ExitFringe.CM()), f12(p.ExitWedge.Rad()))
	fmt.Fprintf(b, "%s\n", coeffs6(p.ExitCoefficients))
	fmt.Fprintf(b, "%s\n", f12(stepCM(p.IntegrationStep, units.Centimeters(1))))
	writeAlignment(b, p.KPos, p.OffsetX, p.OffsetY, p.Tilt)
}

func writeQuadrupole(b *strings.Builder, v *element.Quadrupole) {
	p := v.Params()
	fmt.Fprintf(b, "'QUADRUPO' %s\n", v.Label())
	b.WriteString("0\n")
	fmt.Fprintf(b, "%s %s %s\n", f12(p.Length.CM()), f12(p.Aperture.CM()), f12(p.Field.KG()))
	fmt.Fprintf(b, "%s %s\n", f12(p.EntryExtent.CM()), f12(p.EntryFringe.CM()))
	fmt.Fprintf(b, "%s\n", coeffs6(p.EntryCoefficients))
	fmt.Fprintf(b, "%s %s\n", f12(p.ExitExtent.CM()), f12(p.ExitFringe.CM()))
	fmt.Fprintf(b, "%s\n", coeffs6(p.ExitCoefficients))
	fmt.Fprintf(b, "%s\n", num(stepCM(p.IntegrationStep, units.Millimeters(1))))
	writeAlignment(b, p.KPos, p.OffsetX, p.OffsetY, p.Tilt)
}

// writePole emits the shared single-component multipole block used by the
// SEXTUPOL, OCTUPOLE, DECAPOLE and DODECAPO keywords.
func writePole(b *strings.Builder, keyword, label string, p element.PoleParams) {
	fmt.Fprintf(b, "'%s' %s\n", keyword, label)
	b.WriteString("0\n")
	fmt.Fprintf(b, "%s %s %s\n", f12(p.Length.CM()), f12(p.Aperture.CM()), f12(p.Field.KG()))
	fmt.Fprintf(b, "%s %s\n", f12(p.EntryExtent.CM()), f12(p.EntryFringe.CM()))
	fmt.Fprintf(b, "%s\n", coeffs6(p.EntryCoefficients))
	fmt.Fprintf(b, "%s %s\n", f12(p.ExitExtent.CM()), f12(p.ExitFringe.CM()))
	fmt.Fprintf(b, "%s\n", coeffs6(p.ExitCoefficients))
	fmt.Fprintf(b, "%s\n", num(stepCM(p.IntegrationStep, units.Millimeters(1))))
	writeAlignment(b, p.KPos, p.OffsetX, p.OffsetY, p.Tilt)
}

func writeMultipole(b *strings.Builder, v *element.Multipole) {
	p := v.Params()
	fmt.Fprintf(b, "'MULTIPOL' %s\n", v.Label())
	b.WriteString("0\n")
	parts := []string{f12(p.Length.CM()), f12(p.Aperture.CM())}
	for _, f := range p.Fields {
		parts = append(parts, f12(f.KG()))
	}
	fmt.Fprintf(b, "%s\n", strings.Join(parts, " "))
	// Component fringe extent factors E2..E10 and S2..S10 stay at unity.
	fmt.Fprintf(b, "%s %s %s\n", f12(p.EntryExtent.CM()), f12(p.EntryFringe.CM()), repeat12(1, 9))
	fmt.Fprintf(b, "%s\n", coeffs6(p.EntryCoefficients))
	fmt.Fprintf(b, "%s %s %s\n", f12(p.ExitExtent.CM()), f12(p.ExitFringe.CM()), repeat12(1, 9))
	fmt.Fprintf(b, "%s\n", coeffs6(p.ExitCoefficients))
	// Per-component skew rotations R1..R10.
	fmt.Fprintf(b, "%s\n", repeat12(0, 10))
	fmt.Fprintf(b, "%s\n", num(stepCM(p.IntegrationStep, units.Centimeters(1))))
	writeAlignment(b, p.KPos, p.OffsetX, p.OffsetY, p.Tilt)
}

func writeSolenoid(b *strings.Builder, v *element.Solenoid) {
	p := v.Params()
	fmt.Fprintf(b, "'SOLENOID' %s\n", v.Label())
	b.WriteString("0\n")
	fmt.Fprintf(b, "%s %s %s\n", f12(p.Length.CM()), f12(p.Aperture.CM()), f12(p.Field.KG()))
	fmt.Fprintf(b, "%s %s\n", f12(p.EntryExtent.CM()), f12(p.ExitExtent.CM()))
	fmt.Fprintf(b, "%s\n", num(stepCM(p.IntegrationStep, units.Millimeters(1))))
	writeAlignment(b, p.KPos, p.OffsetX, p.OffsetY, p.Tilt)
}

func writeDipole(b *strings.Builder, v *element.Dipole) {
	p := v.Params()
	fmt.Fprintf(b, "'DIPOLE' %s\n", v.Label())
	b.WriteString("0\n")
	fmt.Fprintf(b, "%s %s\n", f20(p.AngularOpening.Deg()), f12(p.Radius.CM()))
	fmt.Fprintf(b, "%s %s %s %s %s\n",
		f20(p.ACent.Deg()), f12(p.Field.KG()), f12(p.FieldIndex), f12(p.SecondOrder), f12(p.ThirdOrder))

	fmt.Fprintf(b, "%s -1.0\n", f12(p.EntryFringe.CM()))
	fmt.Fprintf(b, "%s %s\n", coeffs6(p.EntryCoefficients), f12(p.EntryShift.CM()))
	fmt.Fprintf(b, "%s %s %s\n", f20(p.EntryAzimuth.Deg()), f12(p.EntryWedge.Deg()), shapeCM(p.EntryBoundary))

	fmt.Fprintf(b, "%s -1.0\n", f12(p.ExitFringe.CM()))
	fmt.Fprintf(b, "%s %s\n", coeffs6(p.ExitCoefficients), f12(p.ExitShift.CM()))
	fmt.Fprintf(b, "%s %s %s\n", f20(p.ExitAzimuth.Deg()), f12(p.ExitWedge.Deg()), shapeCM(p.ExitBoundary))

	// Lateral EFB disabled (XI_L flag 0); zgoubi still expects its lines.
	fmt.Fprintf(b, "%s 0\n", f12(0))
	fmt.Fprintf(b, "6 %s %s %s %s\n", f12(0), f12(1), repeat12(0, 4), f12(0))
	fmt.Fprintf(b, "%s %s %s %s\n", f12(0), f12(0), repeat12(1e9, 4), f12(1e9))

	fmt.Fprintf(b, "%d %s\n", p.InterpolationOrder, f12(p.Resolution))
	fmt.Fprintf(b, "%s\n", num(stepCM(p.IntegrationStep, units.Millimeters(1))))
	fmt.Fprintf(b, "%d\n", int(p.KPos))
	if p.KPos == element.KPosMisaligned {
		fmt.Fprintf(b, "%s %s %s %s\n",
			f12(p.EntryRadius.CM()), f12(p.EntryAngle.Rad()), f12(p.ExitRadius.CM()), f12(p.ExitAngle.Rad()))
	} else {
		fmt.Fprintf(b, "%s 0.0 0.0 0.0\n", f12(0))
	}
}

func writeDipoles(b *strings.Builder, v *element.Dipoles) {
	p := v.Params()
	fmt.Fprintf(b, "'DIPOLES' %s\n", v.Label())
	b.WriteString("0\n")
	fmt.Fprintf(b, "%d %s %s\n", p.Count, f20(p.AngularOpening.Deg()), f12(p.Radius.CM()))
	for _, e := range p.EFBs {
		fmt.Fprintf(b, "%s %s %s 1 %s\n",
			f20(e.ACent.Deg()), f12(e.DeltaRadius.CM()), f12(e.Field.KG()), num(e.FieldIndex))
		writeMultiEFB(b, 4, e, false)
		writeMultiLateral(b, 4, true)
	}
	fmt.Fprintf(b, "%d %s\n", p.InterpolationDegree, num(p.Resolution))
	fmt.Fprintf(b, "%s\n", f12(stepCM(p.IntegrationStep, units.Millimeters(1))))
	fmt.Fprintf(b, "%d\n", int(p.KPos))
	writePolarExitCorrections(b, p)
}

func writeFFAG(b *strings.Builder, v *element.FFAG) {
	p := v.Params()
	fmt.Fprintf(b, "'FFAG' %s\n", v.Label())
	b.WriteString("0\n")
	fmt.Fprintf(b, "%d %s %s\n", p.Count, f20(p.AngularOpening.Deg()), f12(p.Radius.CM()))
	for _, e := range p.EFBs {
		fmt.Fprintf(b, "%s %s %s %s\n",
			f20(e.ACent.Deg()), f12(e.DeltaRadius.CM()), f12(e.Field.KG()), f12(e.FieldIndex))
		writeMultiEFB(b, 6, e, true)
		writeMultiLateral(b, 6, false)
	}
	fmt.Fprintf(b, "%d %s\n", p.InterpolationDegree, num(p.Resolution))
	fmt.Fprintf(b, "%s\n", f12(stepCM(p.IntegrationStep, units.Millimeters(1))))
	fmt.Fprintf(b, "%d\n", int(p.KPos))
	writePolarExitCorrections(b, p)
}

func writeSpirale(b *strings.Builder, v *element.FFAGSpirale) {
	p := v.Params()
	fmt.Fprintf(b, "'FFAG-SPI' %s\n", v.Label())
	b.WriteString("0\n")
	fmt.Fprintf(b, "%d %s %s\n", p.Count, f12(p.AngularOpening.Deg()), f12(p.Radius.CM()))
	for _, e := range p.EFBs {
		fmt.Fprintf(b, "%s %s %s %s\n",
			f12(e.ACent.Deg()), f12(e.DeltaRadius.CM()), f12(e.Field.KG()), f12(e.FieldIndex))
		fmt.Fprintf(b, "%s %s\n", f12(gapCM(e.EntryFringe)), f12(0))
		fmt.Fprintf(b, "0 %s %s\n", coeffsBare(e.EntryCoefficients), f12(e.EntryShift.CM()))
		fmt.Fprintf(b, "%s %s 0.0 0.0 0.0 0.0\n", f12(e.EntryAzimuth.Deg()), f12(e.EntrySpiral.Deg()))
		fmt.Fprintf(b, "%s %s\n", f12(gapCM(e.ExitFringe)), f12(0))
		fmt.Fprintf(b, "0 %s %s\n", coeffsBare(e.ExitCoefficients), f12(e.ExitShift.CM()))
		fmt.Fprintf(b, "%s %s 0.0 0.0 0.0 0.0\n", f12(e.ExitAzimuth.Deg()), f12(e.ExitSpiral.Deg()))
		fmt.Fprintf(b, "%s %s\n", f12(0), f12(-1))
		fmt.Fprintf(b, "0 %s %s\n", repeat12(0, 6), f12(0))
		fmt.Fprintf(b, "%s %s %s\n", f20(0), f12(0), repeat12(1e9, 4))
	}
	fmt.Fprintf(b, "%d %s\n", p.InterpolationDegree, f12(p.Resolution))
	fmt.Fprintf(b, "%s\n", f12(stepCM(p.IntegrationStep, units.Millimeters(1))))
	// Spiral sectors always position by entrance and exit radii.
	b.WriteString("2\n")
	fmt.Fprintf(b, "%s %s %s %s\n",
		f12(p.EntryRadius.CM()), f12(p.EntryAngle.Rad()), f12(p.ExitRadius.CM()), f12(p.ExitAngle.Rad()))
}

// writeMultiEFB emits the entrance and exit boundary lines of one field
// region. Radial sectors prefix nc coefficients; FFAGs floor the fringe
// gap so the gap-scaling law stays defined.
func writeMultiEFB(b *strings.Builder, nc int, e element.EFB, floorGap bool) {
	entry, exit := e.EntryFringe.CM(), e.ExitFringe.CM()
	if floorGap {
		entry, exit = gapCM(e.EntryFringe), gapCM(e.ExitFringe)
	}
	fmt.Fprintf(b, "%s %s\n", f12(entry), f12(0))
	fmt.Fprintf(b, "%d %s %s\n", nc, coeffsBare(e.EntryCoefficients), f12(e.EntryShift.CM()))
	fmt.Fprintf(b, "%s %s %s %s %s %s\n",
		f20(e.EntryAzimuth.Deg()), f12(e.EntryWedge.Deg()), f12(1e9), f12(-1e9), f12(1e9), f12(1e9))
	fmt.Fprintf(b, "%s %s\n", f12(exit), f12(0))
	fmt.Fprintf(b, "%d %s %s\n", nc, coeffsBare(e.ExitCoefficients), f12(e.ExitShift.CM()))
	fmt.Fprintf(b, "%s %s %s %s %s %s\n",
		f20(e.ExitAzimuth.Deg()), f12(e.ExitWedge.Deg()), f12(1e9), f12(-1e9), f12(1e9), f12(1e9))
}

// writeMultiLateral emits the unused lateral boundary of a polar
// multi-magnet. Radial sectors append the lateral reference radius.
func writeMultiLateral(b *strings.Builder, nc int, rm3 bool) {
	fmt.Fprintf(b, "%s %s\n", f12(0), f12(-1))
	fmt.Fprintf(b, "%d %s %s\n", nc, repeat12(0, 6), f12(0))
	if rm3 {
		fmt.Fprintf(b, "%s %s %s %s\n", f20(0), f12(0), repeat12(1e9, 4), f12(0))
	} else {
		fmt.Fprintf(b, "%s %s %s\n", f20(0), f12(0), repeat12(1e9, 4))
	}
}

// writePolarExitCorrections emits the positioning footer of a polar
// multi-magnet: boundary radii and angles for explicit positioning, the
// momentum offset otherwise.
func writePolarExitCorrections(b *strings.Builder, p element.DipolesParams) {
	if p.KPos == element.KPosMisaligned {
		fmt.Fprintf(b, "%s %s %s %s\n",
			f12(p.EntryRadius.CM()), f12(p.EntryAngle.Rad()), f12(p.ExitRadius.CM()), f12(p.ExitAngle.Rad()))
		return
	}
	fmt.Fprintf(b, "%s\n", f12(0))
}

func writeAlignment(b *strings.Builder, kpos element.KPos, dx, dy units.Length, tilt units.Angle) {
	fmt.Fprintf(b, "%d %s %s %s\n", int(kpos), f12(dx.CM()), f12(dy.CM()), f12(tilt.Rad()))
}

func f12(v float64) string { return fmt.Sprintf("%.12e", v) }

func f20(v float64) string { return fmt.Sprintf("%.20e", v) }

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// coeffs6 renders a fringe coefficient line with its count prefix.
func coeffs6(c [6]float64) string {
	return "6 " + coeffsBare(c)
}

func coeffsBare(c [6]float64) string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = f12(v)
	}
	return strings.Join(parts, " ")
}

func repeat12(v float64, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = f12(v)
	}
	return strings.Join(parts, " ")
}

// shapeCM renders an EFB boundary shape in centimeters.
func shapeCM(s element.EFBShape) string {
	return fmt.Sprintf("%s %s %s %s", f12(s.R1.CM()), f12(s.U1.CM()), f12(s.U2.CM()), f12(s.R2.CM()))
}

// stepCM returns the integration step in centimeters, falling back to the
// keyword's conventional default when unset.
func stepCM(step, fallback units.Length) float64 {
	if step == 0 {
		step = fallback
	}
	return step.CM()
}

// gapCM floors an FFAG fringe gap at a near-zero value; a true zero gap
// would make the gap-scaling law singular.
func gapCM(g units.Length) float64 {
	if g == 0 {
		return 1e-8
	}
	return g.CM()
}
