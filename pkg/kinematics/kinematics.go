// Package kinematics converts between the equivalent descriptions of a
// reference particle's motion: kinetic energy, total energy, momentum,
// magnetic rigidity, beta and gamma.
//
// A [Kinematics] value fixes a species and a reference momentum; every
// other quantity derives from those two. The magnetic rigidity is what the
// placement engine consumes when it converts arc lengths to chords or
// positions a bend from its field.
package kinematics

import (
	"fmt"
	"math"

	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/units"
)

// brhoFactor converts rigidity to momentum: p [MeV/c] per (T·m · unit charge).
const brhoFactor = 299.792458

// Particle is a charged species identified by its rest mass and charge.
type Particle struct {
	Name   string
	Mass   units.Energy // rest mass energy
	Charge int          // elementary charges
}

// Common species.
var (
	Proton     = Particle{Name: "proton", Mass: 938.27208816, Charge: 1}
	AntiProton = Particle{Name: "antiproton", Mass: 938.27208816, Charge: -1}
	Electron   = Particle{Name: "electron", Mass: 0.51099895, Charge: -1}
	Positron   = Particle{Name: "positron", Mass: 0.51099895, Charge: 1}
	Muon       = Particle{Name: "muon", Mass: 105.6583755, Charge: -1}
	AntiMuon   = Particle{Name: "antimuon", Mass: 105.6583755, Charge: 1}
)

// ParticleByName resolves a species from its lowercase name.
func ParticleByName(name string) (Particle, error) {
	for _, p := range []Particle{Proton, AntiProton, Electron, Positron, Muon, AntiMuon} {
		if p.Name == name {
			return p, nil
		}
	}
	return Particle{}, errors.New(errors.ErrCodeInvalidInput, "unknown particle species: %q", name)
}

// Kinematics fixes the reference momentum of a species. The zero value is
// not valid; use one of the From constructors.
type Kinematics struct {
	particle Particle
	momentum units.Momentum
}

func validParticle(p Particle) error {
	if p.Mass <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "particle %q has non-positive mass", p.Name)
	}
	if p.Charge == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "particle %q is neutral, rigidity is undefined", p.Name)
	}
	return nil
}

// FromMomentum builds kinematics from a reference momentum.
func FromMomentum(p Particle, momentum units.Momentum) (*Kinematics, error) {
	if err := validParticle(p); err != nil {
		return nil, err
	}
	if momentum <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "momentum must be positive, got %v", momentum)
	}
	return &Kinematics{particle: p, momentum: momentum}, nil
}

// FromKineticEnergy builds kinematics from a kinetic energy.
func FromKineticEnergy(p Particle, ek units.Energy) (*Kinematics, error) {
	if ek <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "kinetic energy must be positive, got %v", ek)
	}
	e := ek.MeV() + p.Mass.MeV()
	return FromMomentum(p, units.MeVc(math.Sqrt(e*e-p.Mass.MeV()*p.Mass.MeV())))
}

// FromTotalEnergy builds kinematics from a total energy.
func FromTotalEnergy(p Particle, e units.Energy) (*Kinematics, error) {
	if e <= p.Mass {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"total energy %v does not exceed the %s rest mass %v", e, p.Name, p.Mass)
	}
	return FromMomentum(p, units.MeVc(math.Sqrt(e.MeV()*e.MeV()-p.Mass.MeV()*p.Mass.MeV())))
}

// FromRigidity builds kinematics from a magnetic rigidity.
func FromRigidity(p Particle, brho units.Rigidity) (*Kinematics, error) {
	if err := validParticle(p); err != nil {
		return nil, err
	}
	if brho <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "rigidity must be positive, got %v", brho)
	}
	charge := p.Charge
	if charge < 0 {
		charge = -charge
	}
	return FromMomentum(p, units.MeVc(brho.TM()*brhoFactor*float64(charge)))
}

// FromGamma builds kinematics from a Lorentz factor.
func FromGamma(p Particle, gamma float64) (*Kinematics, error) {
	if gamma <= 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "gamma must exceed 1, got %v", gamma)
	}
	return FromMomentum(p, units.MeVc(p.Mass.MeV()*math.Sqrt(gamma*gamma-1)))
}

// Particle returns the species.
func (k *Kinematics) Particle() Particle { return k.particle }

// Momentum returns the reference momentum.
func (k *Kinematics) Momentum() units.Momentum { return k.momentum }

// TotalEnergy returns the total energy.
func (k *Kinematics) TotalEnergy() units.Energy {
	p := k.momentum.MeVc()
	m := k.particle.Mass.MeV()
	return units.MegaElectronVolts(math.Sqrt(p*p + m*m))
}

// KineticEnergy returns the kinetic energy.
func (k *Kinematics) KineticEnergy() units.Energy {
	return k.TotalEnergy() - k.particle.Mass
}

// Brho returns the magnetic rigidity.
func (k *Kinematics) Brho() units.Rigidity {
	charge := k.particle.Charge
	if charge < 0 {
		charge = -charge
	}
	return units.TeslaMeters(k.momentum.MeVc() / (brhoFactor * float64(charge)))
}

// Gamma returns the Lorentz factor.
func (k *Kinematics) Gamma() float64 {
	return k.TotalEnergy().MeV() / k.particle.Mass.MeV()
}

// Beta returns the velocity as a fraction of the speed of light.
func (k *Kinematics) Beta() float64 {
	return k.momentum.MeVc() / k.TotalEnergy().MeV()
}

// String summarizes the kinematics for logs.
func (k *Kinematics) String() string {
	return fmt.Sprintf("%s at %s (Brho %.6g T·m)", k.particle.Name, k.momentum, k.Brho().TM())
}
