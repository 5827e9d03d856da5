// Package units provides the scalar quantities used throughout Beamforge.
//
// All quantities are stored in SI base units (meters, radians, tesla) and
// expose conversion accessors for the units the tracer's input format uses
// (centimeters, kilogauss, degrees). Types are plain float64 definitions so
// they marshal as numbers and cost nothing at runtime.
//
// # Usage
//
//	l := units.Centimeters(25)
//	l.M()  // 0.25
//	l.CM() // 25
//
//	a := units.Degrees(30)
//	a.Rad() // 0.5235...
package units

import (
	"fmt"
	"math"
)

// Length is a spatial distance in meters.
type Length float64

// Meters returns a Length of m meters.
func Meters(m float64) Length { return Length(m) }

// Centimeters returns a Length of cm centimeters.
func Centimeters(cm float64) Length { return Length(cm / 100) }

// Millimeters returns a Length of mm millimeters.
func Millimeters(mm float64) Length { return Length(mm / 1000) }

// M returns the length in meters.
func (l Length) M() float64 { return float64(l) }

// CM returns the length in centimeters.
func (l Length) CM() float64 { return float64(l) * 100 }

// MM returns the length in millimeters.
func (l Length) MM() float64 { return float64(l) * 1000 }

// String formats the length in meters.
func (l Length) String() string { return fmt.Sprintf("%g m", float64(l)) }

// Angle is a planar angle in radians.
type Angle float64

// Radians returns an Angle of rad radians.
func Radians(rad float64) Angle { return Angle(rad) }

// Degrees returns an Angle of deg degrees.
func Degrees(deg float64) Angle { return Angle(deg * math.Pi / 180) }

// Milliradians returns an Angle of mrad milliradians.
func Milliradians(mrad float64) Angle { return Angle(mrad / 1000) }

// Rad returns the angle in radians.
func (a Angle) Rad() float64 { return float64(a) }

// Deg returns the angle in degrees.
func (a Angle) Deg() float64 { return float64(a) * 180 / math.Pi }

// String formats the angle in degrees.
func (a Angle) String() string { return fmt.Sprintf("%g deg", a.Deg()) }

// Field is a magnetic flux density in tesla.
type Field float64

// Tesla returns a Field of t tesla.
func Tesla(t float64) Field { return Field(t) }

// Kilogauss returns a Field of kg kilogauss.
func Kilogauss(kg float64) Field { return Field(kg / 10) }

// T returns the field in tesla.
func (f Field) T() float64 { return float64(f) }

// KG returns the field in kilogauss, the unit the tracer reads.
func (f Field) KG() float64 { return float64(f) * 10 }

// String formats the field in tesla.
func (f Field) String() string { return fmt.Sprintf("%g T", float64(f)) }

// Rigidity is a magnetic rigidity (B·rho) in tesla meters.
type Rigidity float64

// TeslaMeters returns a Rigidity of tm tesla meters.
func TeslaMeters(tm float64) Rigidity { return Rigidity(tm) }

// TM returns the rigidity in tesla meters.
func (r Rigidity) TM() float64 { return float64(r) }

// KGCM returns the rigidity in kilogauss centimeters, the unit the
// tracer's object definition expects.
func (r Rigidity) KGCM() float64 { return float64(r) * 1000 }

// String formats the rigidity in tesla meters.
func (r Rigidity) String() string { return fmt.Sprintf("%g T·m", float64(r)) }

// Momentum is a particle momentum in MeV/c.
type Momentum float64

// MeVc returns a Momentum of v MeV/c.
func MeVc(v float64) Momentum { return Momentum(v) }

// MeVc returns the momentum in MeV/c.
func (p Momentum) MeVc() float64 { return float64(p) }

// GeVc returns the momentum in GeV/c.
func (p Momentum) GeVc() float64 { return float64(p) / 1000 }

// String formats the momentum in MeV/c.
func (p Momentum) String() string { return fmt.Sprintf("%g MeV/c", float64(p)) }

// Energy is a particle energy in MeV.
type Energy float64

// MeV returns the energy in mega electronvolts.
func (e Energy) MeV() float64 { return float64(e) }

// GeV returns the energy in giga electronvolts.
func (e Energy) GeV() float64 { return float64(e) / 1000 }

// MegaElectronVolts returns an Energy of mev MeV.
func MegaElectronVolts(mev float64) Energy { return Energy(mev) }

// GigaElectronVolts returns an Energy of gev GeV.
func GigaElectronVolts(gev float64) Energy { return Energy(gev * 1000) }

// String formats the energy in MeV.
func (e Energy) String() string { return fmt.Sprintf("%g MeV", float64(e)) }
