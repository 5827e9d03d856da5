package manifest

import (
	"github.com/matzehuels/beamforge/pkg/element"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/kinematics"
	"github.com/matzehuels/beamforge/pkg/units"
)

// elementBuilders maps a manifest type tag to its constructor. Every
// builder returns a fresh element so expanded sequences never share
// placement state.
var elementBuilders = map[string]func(label string, spec elementSpec, kin *kinematics.Kinematics) (element.Element, error){
	"marker":       buildMarker,
	"drift":        buildDrift,
	"bend":         buildBend,
	"quadrupole":   buildQuadrupole,
	"sextupole":    buildPole(element.NewSextupole),
	"octupole":     buildPole(element.NewOctupole),
	"decapole":     buildPole(element.NewDecapole),
	"dodecapole":   buildPole(element.NewDodecapole),
	"multipole":    buildMultipole,
	"solenoid":     buildSolenoid,
	"dipole":       buildDipole,
	"dipoles":      buildDipoles(element.NewDipoles),
	"ffag":         buildDipoles(element.NewFFAG),
	"ffag_spirale": buildDipoles(element.NewFFAGSpirale),
}

// Build constructs a fresh element from the catalog entry with the given
// label.
func (m *Manifest) Build(label string) (element.Element, error) {
	return m.buildAs(label, label)
}

// buildAs constructs the catalog entry label under a possibly uniqued
// output label.
func (m *Manifest) buildAs(label, as string) (element.Element, error) {
	spec, ok := m.elements[label]
	if !ok {
		return nil, errors.New(errors.ErrCodeElementNotFound, "manifest %q has no element %q", m.name, label)
	}
	build := elementBuilders[spec.Type]
	el, err := build(as, spec, m.kinematics)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "manifest %q: element %q", m.name, label)
	}
	return el, nil
}

func buildMarker(label string, _ elementSpec, _ *kinematics.Kinematics) (element.Element, error) {
	return element.NewMarker(label)
}

func buildDrift(label string, spec elementSpec, _ *kinematics.Kinematics) (element.Element, error) {
	return element.NewDrift(label, units.Meters(spec.Length))
}

func buildBend(label string, spec elementSpec, kin *kinematics.Kinematics) (element.Element, error) {
	return element.NewBend(label, element.BendParams{
		Length:          units.Meters(spec.Length),
		ChordLength:     spec.Chord,
		Field:           units.Tesla(spec.Field),
		Skew:            units.Degrees(spec.Skew),
		EntryExtent:     units.Meters(spec.EntryExtent),
		ExitExtent:      units.Meters(spec.ExitExtent),
		EntryFringe:     units.Meters(spec.EntryFringe),
		ExitFringe:      units.Meters(spec.ExitFringe),
		EntryWedge:      units.Degrees(spec.EntryWedge),
		ExitWedge:       units.Degrees(spec.ExitWedge),
		OffsetX:         units.Meters(spec.OffsetX),
		OffsetY:         units.Meters(spec.OffsetY),
		Tilt:            units.Degrees(spec.Tilt),
		KPos:            element.KPos(spec.KPos),
		IntegrationStep: units.Meters(spec.Step),
		Kinematics:      kin,
	})
}

func buildQuadrupole(label string, spec elementSpec, kin *kinematics.Kinematics) (element.Element, error) {
	return element.NewQuadrupole(label, element.QuadrupoleParams{
		Length:          units.Meters(spec.Length),
		Aperture:        units.Meters(spec.Aperture),
		Field:           units.Tesla(spec.Field),
		EntryExtent:     units.Meters(spec.EntryExtent),
		ExitExtent:      units.Meters(spec.ExitExtent),
		EntryFringe:     units.Meters(spec.EntryFringe),
		ExitFringe:      units.Meters(spec.ExitFringe),
		OffsetX:         units.Meters(spec.OffsetX),
		OffsetY:         units.Meters(spec.OffsetY),
		Tilt:            units.Degrees(spec.Tilt),
		KPos:            element.KPos(spec.KPos),
		IntegrationStep: units.Meters(spec.Step),
		Kinematics:      kin,
	})
}

func buildPole[T element.Element](ctor func(string, element.PoleParams) (T, error)) func(string, elementSpec, *kinematics.Kinematics) (element.Element, error) {
	return func(label string, spec elementSpec, kin *kinematics.Kinematics) (element.Element, error) {
		return ctor(label, element.PoleParams{
			Length:          units.Meters(spec.Length),
			Aperture:        units.Meters(spec.Aperture),
			Field:           units.Tesla(spec.Field),
			EntryExtent:     units.Meters(spec.EntryExtent),
			ExitExtent:      units.Meters(spec.ExitExtent),
			EntryFringe:     units.Meters(spec.EntryFringe),
			ExitFringe:      units.Meters(spec.ExitFringe),
			OffsetX:         units.Meters(spec.OffsetX),
			OffsetY:         units.Meters(spec.OffsetY),
			Tilt:            units.Degrees(spec.Tilt),
			KPos:            element.KPos(spec.KPos),
			IntegrationStep: units.Meters(spec.Step),
			Kinematics:      kin,
		})
	}
}

func buildMultipole(label string, spec elementSpec, kin *kinematics.Kinematics) (element.Element, error) {
	if len(spec.Fields) > 10 {
		return nil, errors.New(errors.ErrCodeInvalidManifest,
			"element %q: at most 10 multipole fields, got %d", label, len(spec.Fields))
	}
	var fields [10]units.Field
	for i, f := range spec.Fields {
		fields[i] = units.Tesla(f)
	}
	return element.NewMultipole(label, element.MultipoleParams{
		Length:          units.Meters(spec.Length),
		Aperture:        units.Meters(spec.Aperture),
		Fields:          fields,
		EntryExtent:     units.Meters(spec.EntryExtent),
		ExitExtent:      units.Meters(spec.ExitExtent),
		EntryFringe:     units.Meters(spec.EntryFringe),
		ExitFringe:      units.Meters(spec.ExitFringe),
		OffsetX:         units.Meters(spec.OffsetX),
		OffsetY:         units.Meters(spec.OffsetY),
		Tilt:            units.Degrees(spec.Tilt),
		KPos:            element.KPos(spec.KPos),
		IntegrationStep: units.Meters(spec.Step),
		Kinematics:      kin,
	})
}

func buildSolenoid(label string, spec elementSpec, kin *kinematics.Kinematics) (element.Element, error) {
	return element.NewSolenoid(label, element.SolenoidParams{
		Length:          units.Meters(spec.Length),
		Aperture:        units.Meters(spec.Aperture),
		Field:           units.Tesla(spec.Field),
		EntryExtent:     units.Meters(spec.EntryExtent),
		ExitExtent:      units.Meters(spec.ExitExtent),
		OffsetX:         units.Meters(spec.OffsetX),
		OffsetY:         units.Meters(spec.OffsetY),
		Tilt:            units.Degrees(spec.Tilt),
		KPos:            element.KPos(spec.KPos),
		IntegrationStep: units.Meters(spec.Step),
		Kinematics:      kin,
	})
}

func buildDipole(label string, spec elementSpec, _ *kinematics.Kinematics) (element.Element, error) {
	return element.NewDipole(label, element.DipoleParams{
		AngularOpening:  units.Degrees(spec.Opening),
		Radius:          units.Meters(spec.Radius),
		ACent:           units.Degrees(spec.ACent),
		Field:           units.Tesla(spec.Field),
		FieldIndex:      spec.FieldIndex,
		EntryAzimuth:    units.Degrees(spec.EntryAzimuth),
		ExitAzimuth:     units.Degrees(spec.ExitAzimuth),
		EntryWedge:      units.Degrees(spec.EntryWedge),
		ExitWedge:       units.Degrees(spec.ExitWedge),
		EntryFringe:     units.Meters(spec.EntryFringe),
		ExitFringe:      units.Meters(spec.ExitFringe),
		EntryRadius:     units.Meters(spec.EntryRadius),
		EntryAngle:      units.Degrees(spec.EntryAngle),
		ExitRadius:      units.Meters(spec.ExitRadius),
		ExitAngle:       units.Degrees(spec.ExitAngle),
		KPos:            element.KPos(spec.KPos),
		IntegrationStep: units.Meters(spec.Step),
	})
}

func buildDipoles[T element.Element](ctor func(string, element.DipolesParams) (T, error)) func(string, elementSpec, *kinematics.Kinematics) (element.Element, error) {
	return func(label string, spec elementSpec, _ *kinematics.Kinematics) (element.Element, error) {
		efbs := make([]element.EFB, len(spec.EFBs))
		for i, e := range spec.EFBs {
			efbs[i] = element.EFB{
				ACent:        units.Degrees(e.ACent),
				DeltaRadius:  units.Meters(e.DeltaRadius),
				Field:        units.Tesla(e.Field),
				FieldIndex:   e.FieldIndex,
				EntryAzimuth: units.Degrees(e.EntryAzimuth),
				ExitAzimuth:  units.Degrees(e.ExitAzimuth),
				EntrySpiral:  units.Degrees(e.EntrySpiral),
				ExitSpiral:   units.Degrees(e.ExitSpiral),
				EntryFringe:  units.Meters(e.EntryFringe),
				ExitFringe:   units.Meters(e.ExitFringe),
			}
		}
		return ctor(label, element.DipolesParams{
			Count:           spec.Count,
			AngularOpening:  units.Degrees(spec.Opening),
			Radius:          units.Meters(spec.Radius),
			EFBs:            efbs,
			EntryRadius:     units.Meters(spec.EntryRadius),
			EntryAngle:      units.Degrees(spec.EntryAngle),
			ExitRadius:      units.Meters(spec.ExitRadius),
			ExitAngle:       units.Degrees(spec.ExitAngle),
			KPos:            element.KPos(spec.KPos),
			IntegrationStep: units.Meters(spec.Step),
		})
	}
}
