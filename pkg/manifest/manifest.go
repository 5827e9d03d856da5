package manifest

import (
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/kinematics"
	"github.com/matzehuels/beamforge/pkg/units"
)

// Manifest is a parsed and validated beamline description.
type Manifest struct {
	name       string
	kinematics *kinematics.Kinematics
	elements   map[string]elementSpec
	order      []string
	sequences  map[string][]string
}

// ParseFile reads and parses a manifest from disk.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "manifest %s", path)
	}
	return Parse(data)
}

// Parse decodes a TOML manifest and validates the element catalog, the
// kinematics block and every sequence reference.
func Parse(data []byte) (*Manifest, error) {
	var file manifestFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decoding manifest")
	}
	if file.Name == "" {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest has no name")
	}

	m := &Manifest{
		name:      file.Name,
		elements:  make(map[string]elementSpec, len(file.Elements)),
		sequences: file.Sequences,
	}
	if m.sequences == nil {
		m.sequences = map[string][]string{}
	}

	kin, err := buildKinematics(file.Kinematics)
	if err != nil {
		return nil, err
	}
	m.kinematics = kin

	for _, spec := range file.Elements {
		if err := errors.ValidateLabel(spec.Label); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "element %q", spec.Label)
		}
		if _, ok := m.elements[spec.Label]; ok {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "duplicate element label %q", spec.Label)
		}
		if _, ok := elementBuilders[spec.Type]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidManifest,
				"element %q has unknown type %q", spec.Label, spec.Type)
		}
		m.elements[spec.Label] = spec
		m.order = append(m.order, spec.Label)
	}

	if err := m.validateSequences(); err != nil {
		return nil, err
	}
	return m, nil
}

// validateSequences checks that every sequence entry resolves to an
// element or another sequence and that the composition graph is acyclic.
func (m *Manifest) validateSequences() error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(m.sequences))

	var dfs func(name string) error
	dfs = func(name string) error {
		color[name] = gray
		for _, entry := range m.sequences[name] {
			if _, isSeq := m.sequences[entry]; isSeq {
				if _, isEl := m.elements[entry]; isEl {
					return errors.New(errors.ErrCodeInvalidManifest,
						"%q names both an element and a sequence", entry)
				}
				switch color[entry] {
				case white:
					if err := dfs(entry); err != nil {
						return err
					}
				case gray:
					return errors.New(errors.ErrCodeInvalidManifest,
						"sequence %q is part of a recursive composition", entry)
				}
				continue
			}
			if _, isEl := m.elements[entry]; !isEl {
				return errors.New(errors.ErrCodeInvalidManifest,
					"sequence %q references unknown name %q", name, entry)
			}
		}
		color[name] = black
		return nil
	}

	for name := range m.sequences {
		if color[name] == white {
			if err := dfs(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Name returns the manifest's lattice name.
func (m *Manifest) Name() string { return m.name }

// Kinematics returns the reference kinematics, nil when the manifest has
// no kinematics block.
func (m *Manifest) Kinematics() *kinematics.Kinematics { return m.kinematics }

// ElementLabels returns the catalog labels in declaration order.
func (m *Manifest) ElementLabels() []string {
	return append([]string(nil), m.order...)
}

// SequenceNames returns the sequence names, sorted.
func (m *Manifest) SequenceNames() []string {
	names := make([]string, 0, len(m.sequences))
	for name := range m.sequences {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasSequence reports whether the manifest declares the sequence.
func (m *Manifest) HasSequence(name string) bool {
	_, ok := m.sequences[name]
	return ok
}

// buildKinematics resolves the kinematics block. Exactly one quantity may
// fix the reference momentum.
func buildKinematics(spec kinematicsSpec) (*kinematics.Kinematics, error) {
	set := 0
	for _, v := range []float64{spec.EnergyMeV, spec.MomentumMeVc, spec.RigidityTM, spec.Gamma} {
		if v != 0 {
			set++
		}
	}
	if set == 0 {
		if spec.Particle != "" {
			return nil, errors.New(errors.ErrCodeInvalidManifest,
				"kinematics names a particle but fixes no reference quantity")
		}
		return nil, nil
	}
	if set > 1 {
		return nil, errors.New(errors.ErrCodeInvalidManifest,
			"kinematics must fix exactly one of energy_mev, momentum_mevc, rigidity_tm, gamma")
	}

	name := spec.Particle
	if name == "" {
		name = "proton"
	}
	particle, err := kinematics.ParticleByName(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "kinematics")
	}

	switch {
	case spec.EnergyMeV != 0:
		return kinematics.FromKineticEnergy(particle, units.MegaElectronVolts(spec.EnergyMeV))
	case spec.MomentumMeVc != 0:
		return kinematics.FromMomentum(particle, units.MeVc(spec.MomentumMeVc))
	case spec.RigidityTM != 0:
		return kinematics.FromRigidity(particle, units.TeslaMeters(spec.RigidityTM))
	default:
		return kinematics.FromGamma(particle, spec.Gamma)
	}
}

// manifestFile is the raw TOML shape.
type manifestFile struct {
	Name       string              `toml:"name"`
	Kinematics kinematicsSpec      `toml:"kinematics"`
	Elements   []elementSpec       `toml:"elements"`
	Sequences  map[string][]string `toml:"sequences"`
}

type kinematicsSpec struct {
	Particle     string  `toml:"particle"`
	EnergyMeV    float64 `toml:"energy_mev"`
	MomentumMeVc float64 `toml:"momentum_mevc"`
	RigidityTM   float64 `toml:"rigidity_tm"`
	Gamma        float64 `toml:"gamma"`
}

type elementSpec struct {
	Label string `toml:"label"`
	Type  string `toml:"type"`

	Length   float64   `toml:"length_m"`
	Chord    bool      `toml:"chord_length"`
	Aperture float64   `toml:"aperture_m"`
	Field    float64   `toml:"field_t"`
	Fields   []float64 `toml:"fields_t"`
	Skew     float64   `toml:"skew_deg"`

	EntryFringe float64 `toml:"entry_fringe_m"`
	ExitFringe  float64 `toml:"exit_fringe_m"`
	EntryExtent float64 `toml:"entry_extent_m"`
	ExitExtent  float64 `toml:"exit_extent_m"`
	EntryWedge  float64 `toml:"entry_wedge_deg"`
	ExitWedge   float64 `toml:"exit_wedge_deg"`

	OffsetX float64 `toml:"offset_x_m"`
	OffsetY float64 `toml:"offset_y_m"`
	Tilt    float64 `toml:"tilt_deg"`
	KPos    int     `toml:"kpos"`
	Step    float64 `toml:"step_m"`

	Opening      float64 `toml:"opening_deg"`
	Radius       float64 `toml:"radius_m"`
	ACent        float64 `toml:"acent_deg"`
	FieldIndex   float64 `toml:"field_index"`
	EntryAzimuth float64 `toml:"entry_azimuth_deg"`
	ExitAzimuth  float64 `toml:"exit_azimuth_deg"`
	EntryRadius  float64 `toml:"entry_radius_m"`
	EntryAngle   float64 `toml:"entry_angle_deg"`
	ExitRadius   float64 `toml:"exit_radius_m"`
	ExitAngle    float64 `toml:"exit_angle_deg"`

	Count int       `toml:"count"`
	EFBs  []efbSpec `toml:"efbs"`
}

type efbSpec struct {
	ACent        float64 `toml:"acent_deg"`
	DeltaRadius  float64 `toml:"delta_radius_m"`
	Field        float64 `toml:"field_t"`
	FieldIndex   float64 `toml:"field_index"`
	EntryAzimuth float64 `toml:"entry_azimuth_deg"`
	ExitAzimuth  float64 `toml:"exit_azimuth_deg"`
	EntrySpiral  float64 `toml:"entry_spiral_deg"`
	ExitSpiral   float64 `toml:"exit_spiral_deg"`
	EntryFringe  float64 `toml:"entry_fringe_m"`
	ExitFringe   float64 `toml:"exit_fringe_m"`
}
