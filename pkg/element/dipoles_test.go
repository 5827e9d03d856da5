package element

import (
	"math"
	"testing"

	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/frame"
	"github.com/matzehuels/beamforge/pkg/units"
)

func TestDipolesEvenSpreadDefaults(t *testing.T) {
	// Three regions over 60 degrees land at 10, 30 and 50 degrees.
	d, err := NewDipoles("DS", DipolesParams{
		AngularOpening: units.Degrees(60),
		Radius:         units.Meters(2),
		EFBs:           make([]EFB, 3),
	})
	if err != nil {
		t.Fatalf("NewDipoles: %v", err)
	}
	p := d.Params()

	if p.Count != 3 {
		t.Errorf("Count = %v, want 3", p.Count)
	}

	wantACent := []float64{10, 30, 50}
	for i, efb := range p.EFBs {
		if got := efb.ACent.Deg(); math.Abs(got-wantACent[i]) > tol {
			t.Errorf("EFBs[%d].ACent = %v deg, want %v", i, got, wantACent[i])
		}
		if got := efb.EntryAzimuth.Deg(); math.Abs(got-wantACent[i]) > tol {
			t.Errorf("EFBs[%d].EntryAzimuth = %v deg, want %v", i, got, wantACent[i])
		}
		if got := efb.ExitAzimuth.Deg(); math.Abs(got+(60-wantACent[i])) > tol {
			t.Errorf("EFBs[%d].ExitAzimuth = %v deg, want %v", i, got, wantACent[i]-60)
		}
	}

	angles := d.ReferenceAngles()
	if len(angles) != 3 {
		t.Fatalf("ReferenceAngles length = %d, want 3", len(angles))
	}
	for i, a := range angles {
		if math.Abs(a.Deg()-wantACent[i]) > tol {
			t.Errorf("ReferenceAngles[%d] = %v deg, want %v", i, a.Deg(), wantACent[i])
		}
	}
}

func TestDipolesExplicitAzimuthPreserved(t *testing.T) {
	d, err := NewDipoles("DS", DipolesParams{
		AngularOpening: units.Degrees(60),
		Radius:         units.Meters(2),
		EFBs: []EFB{
			{ACent: units.Degrees(12)},
			{},
		},
	})
	if err != nil {
		t.Fatalf("NewDipoles: %v", err)
	}
	p := d.Params()

	if got := p.EFBs[0].ACent.Deg(); math.Abs(got-12) > tol {
		t.Errorf("EFBs[0].ACent = %v deg, want 12", got)
	}
	// The untouched region still spreads evenly: 60/4 + 60/2.
	if got := p.EFBs[1].ACent.Deg(); math.Abs(got-45) > tol {
		t.Errorf("EFBs[1].ACent = %v deg, want 45", got)
	}
}

func TestDipolesCountMismatch(t *testing.T) {
	_, err := NewDipoles("DS", DipolesParams{
		Count:          4,
		AngularOpening: units.Degrees(60),
		Radius:         units.Meters(2),
		EFBs:           make([]EFB, 3),
	})
	if !errors.Is(err, errors.ErrCodeInconsistent) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInconsistent)
	}
}

func TestDipolesCountRange(t *testing.T) {
	tests := []struct {
		name string
		efbs int
	}{
		{"no regions", 0},
		{"too many regions", MaxEFBs + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDipoles("DS", DipolesParams{
				AngularOpening: units.Degrees(60),
				Radius:         units.Meters(2),
				EFBs:           make([]EFB, tt.efbs),
			})
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestDipolesEnvelopeFrames(t *testing.T) {
	// The shared envelope behaves exactly like a single polar dipole of
	// the same opening and radius.
	d, err := NewDipoles("DS", DipolesParams{
		AngularOpening: units.Degrees(30),
		Radius:         units.Meters(2),
		EFBs:           make([]EFB, 3),
	})
	if err != nil {
		t.Fatalf("NewDipoles: %v", err)
	}
	ref := mustDipole(t, "DIP", DipoleParams{
		AngularOpening: units.Degrees(30),
		Radius:         units.Meters(2),
	})

	at := frame.At(units.Meters(0.5), units.Meters(1), units.Degrees(15))
	d.Place(at)
	ref.Place(at)

	for _, acc := range []struct {
		name string
		a, b func() (frame.Frame, error)
	}{
		{"EntryPatched", d.EntryPatched, ref.EntryPatched},
		{"Center", d.Center, ref.Center},
		{"Exit", d.Exit, ref.Exit},
		{"ExitPatched", d.ExitPatched, ref.ExitPatched},
	} {
		got, err := acc.a()
		if err != nil {
			t.Fatalf("%s: %v", acc.name, err)
		}
		want, err := acc.b()
		if err != nil {
			t.Fatalf("%s (reference): %v", acc.name, err)
		}
		frameNear(t, acc.name, got, want)
	}

	if got, want := d.Length(), ref.Length(); got != want {
		t.Errorf("Length = %v, want %v", got, want)
	}
}

func TestFFAGSpiraleReferenceAngles(t *testing.T) {
	p := DipolesParams{
		AngularOpening: units.Degrees(60),
		Radius:         units.Meters(4),
		EFBs:           make([]EFB, 3),
	}

	radial, err := NewFFAG("FF", p)
	if err != nil {
		t.Fatalf("NewFFAG: %v", err)
	}
	spiral, err := NewFFAGSpirale("FS", p)
	if err != nil {
		t.Fatalf("NewFFAGSpirale: %v", err)
	}

	// A spiral sector references mid-envelope: every azimuth moves by
	// half the opening relative to the radial sector.
	ra := radial.ReferenceAngles()
	sa := spiral.ReferenceAngles()
	if len(ra) != len(sa) {
		t.Fatalf("length mismatch: %d vs %d", len(ra), len(sa))
	}
	for i := range ra {
		if got, want := sa[i].Deg(), ra[i].Deg()+30; math.Abs(got-want) > tol {
			t.Errorf("spiral angle[%d] = %v deg, want %v", i, got, want)
		}
	}
}

func TestDipolesPolarAlignmentValidation(t *testing.T) {
	_, err := NewDipoles("DS", DipolesParams{
		AngularOpening: units.Degrees(60),
		Radius:         units.Meters(2),
		EFBs:           make([]EFB, 2),
		KPos:           KPosAuto,
	})
	if !errors.Is(err, errors.ErrCodeInvalidAlignment) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidAlignment)
	}
}
