package units

import (
	"math"
	"testing"
)

const eps = 1e-12

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestLengthConversions(t *testing.T) {
	tests := []struct {
		name string
		l    Length
		m    float64
		cm   float64
		mm   float64
	}{
		{"one meter", Meters(1), 1, 100, 1000},
		{"25 centimeters", Centimeters(25), 0.25, 25, 250},
		{"5 millimeters", Millimeters(5), 0.005, 0.5, 5},
		{"zero", Meters(0), 0, 0, 0},
		{"negative", Centimeters(-40), -0.4, -40, -400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !almostEqual(tt.l.M(), tt.m) {
				t.Errorf("M() = %v, want %v", tt.l.M(), tt.m)
			}
			if !almostEqual(tt.l.CM(), tt.cm) {
				t.Errorf("CM() = %v, want %v", tt.l.CM(), tt.cm)
			}
			if !almostEqual(tt.l.MM(), tt.mm) {
				t.Errorf("MM() = %v, want %v", tt.l.MM(), tt.mm)
			}
		})
	}
}

func TestAngleConversions(t *testing.T) {
	tests := []struct {
		name string
		a    Angle
		rad  float64
		deg  float64
	}{
		{"right angle", Degrees(90), math.Pi / 2, 90},
		{"half turn", Radians(math.Pi), math.Pi, 180},
		{"milliradians", Milliradians(500), 0.5, 0.5 * 180 / math.Pi},
		{"negative", Degrees(-45), -math.Pi / 4, -45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !almostEqual(tt.a.Rad(), tt.rad) {
				t.Errorf("Rad() = %v, want %v", tt.a.Rad(), tt.rad)
			}
			if !almostEqual(tt.a.Deg(), tt.deg) {
				t.Errorf("Deg() = %v, want %v", tt.a.Deg(), tt.deg)
			}
		})
	}
}

func TestFieldConversions(t *testing.T) {
	if got := Tesla(1.5).KG(); !almostEqual(got, 15) {
		t.Errorf("Tesla(1.5).KG() = %v, want 15", got)
	}
	if got := Kilogauss(23).T(); !almostEqual(got, 2.3) {
		t.Errorf("Kilogauss(23).T() = %v, want 2.3", got)
	}
}

func TestRigidityConversions(t *testing.T) {
	// 1 T·m = 10 kG · 100 cm.
	if got := TeslaMeters(5.657).KGCM(); !almostEqual(got, 5657) {
		t.Errorf("TeslaMeters(5.657).KGCM() = %v, want 5657", got)
	}
}

func TestEnergyConversions(t *testing.T) {
	if got := GigaElectronVolts(1.3).MeV(); !almostEqual(got, 1300) {
		t.Errorf("GigaElectronVolts(1.3).MeV() = %v, want 1300", got)
	}
	if got := MegaElectronVolts(230).GeV(); !almostEqual(got, 0.23) {
		t.Errorf("MegaElectronVolts(230).GeV() = %v, want 0.23", got)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"length", Meters(0.25).String(), "0.25 m"},
		{"angle", Radians(0).String(), "0 deg"},
		{"field", Tesla(1.5).String(), "1.5 T"},
		{"energy", MegaElectronVolts(230).String(), "230 MeV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("String() = %q, want %q", tt.got, tt.want)
			}
		})
	}
}
