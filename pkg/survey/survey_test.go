package survey

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/beamforge/pkg/element"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/frame"
	"github.com/matzehuels/beamforge/pkg/line"
	"github.com/matzehuels/beamforge/pkg/units"
)

const tol = 1e-9

func cell(t *testing.T) *line.Line {
	t.Helper()
	d1, err := element.NewDrift("D1", units.Meters(1))
	if err != nil {
		t.Fatalf("NewDrift: %v", err)
	}
	qf, err := element.NewQuadrupole("QF", element.QuadrupoleParams{Length: units.Meters(0.5)})
	if err != nil {
		t.Fatalf("NewQuadrupole: %v", err)
	}
	dip, err := element.NewDipole("DIP", element.DipoleParams{
		AngularOpening: units.Degrees(90),
		Radius:         units.Meters(2),
	})
	if err != nil {
		t.Fatalf("NewDipole: %v", err)
	}
	l, err := line.New("cell", []element.Element{d1, qf, dip})
	if err != nil {
		t.Fatalf("line.New: %v", err)
	}
	return l
}

func TestComputeRows(t *testing.T) {
	doc, err := Compute(cell(t), frame.Identity())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if doc.Name != "cell" {
		t.Errorf("Name = %q, want cell", doc.Name)
	}
	if len(doc.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(doc.Rows))
	}

	wantS := []struct{ sin, sout float64 }{
		{0, 1},
		{1, 1.5},
		{1.5, 1.5 + math.Pi/2*2},
	}
	for i, want := range wantS {
		r := doc.Rows[i]
		if math.Abs(r.SIn-want.sin) > tol || math.Abs(r.SOut-want.sout) > tol {
			t.Errorf("rows[%d] s = (%v, %v), want (%v, %v)", i, r.SIn, r.SOut, want.sin, want.sout)
		}
	}
	if math.Abs(doc.TotalLength-(1.5+math.Pi)) > tol {
		t.Errorf("TotalLength = %v, want %v", doc.TotalLength, 1.5+math.Pi)
	}

	// The quadrupole body runs from x=1 to x=1.5 on the axis.
	qf := doc.Rows[1]
	if math.Abs(qf.Entry.X-1) > tol || math.Abs(qf.Exit.X-1.5) > tol {
		t.Errorf("QF spans x %v..%v, want 1..1.5", qf.Entry.X, qf.Exit.X)
	}
	if qf.EntryHeading != 0 || qf.ExitHeading != 0 {
		t.Errorf("QF headings = (%v, %v), want straight through", qf.EntryHeading, qf.ExitHeading)
	}
	if qf.Radius != 0 || qf.AngularOpening != 0 || qf.ReferenceAngles != nil {
		t.Error("cartesian row carries arc metadata")
	}
}

func TestComputePolarMetadata(t *testing.T) {
	doc, err := Compute(cell(t), frame.Identity())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	dip, ok := doc.Row("DIP")
	if !ok {
		t.Fatal("no DIP row")
	}
	if dip.Family != "polar" {
		t.Errorf("Family = %q, want polar", dip.Family)
	}
	if math.Abs(dip.Radius-2) > tol {
		t.Errorf("Radius = %v, want 2", dip.Radius)
	}
	if math.Abs(dip.AngularOpening-90) > tol {
		t.Errorf("AngularOpening = %v, want 90", dip.AngularOpening)
	}
	if len(dip.ReferenceAngles) != 1 || math.Abs(dip.ReferenceAngles[0]-45) > tol {
		t.Errorf("ReferenceAngles = %v, want [45]", dip.ReferenceAngles)
	}
	// The quarter turn ends heading -90.
	if math.Abs(dip.ExitHeading+90) > 1e-6 {
		t.Errorf("ExitHeading = %v, want -90", dip.ExitHeading)
	}
}

func TestComputePropagatesPlacementError(t *testing.T) {
	b, err := element.NewBend("B1", element.BendParams{
		Length:      units.Meters(1),
		ChordLength: true,
		Field:       units.Tesla(1.5),
		KPos:        element.KPosAuto,
	})
	if err != nil {
		t.Fatalf("NewBend: %v", err)
	}
	l, err := line.New("bad", []element.Element{b})
	if err != nil {
		t.Fatalf("line.New: %v", err)
	}

	if _, err := Compute(l, frame.Identity()); !errors.Is(err, errors.ErrCodeMissingKinematics) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeMissingKinematics)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	doc, err := Compute(cell(t), frame.Identity())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var buf bytes.Buffer
	if err := doc.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var back Document
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Name != doc.Name || len(back.Rows) != len(doc.Rows) {
		t.Errorf("round trip lost data: %+v", back)
	}
	if back.Rows[2].Label != "DIP" || math.Abs(back.Rows[2].Radius-2) > tol {
		t.Errorf("round trip DIP row = %+v", back.Rows[2])
	}
}

func TestWriteCSV(t *testing.T) {
	doc, err := Compute(cell(t), frame.Identity())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var buf bytes.Buffer
	if err := doc.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("csv lines = %d, want header + 3 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "label,keyword,family") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "D1,DRIFT,cartesian") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestWriteTable(t *testing.T) {
	doc, err := Compute(cell(t), frame.Identity())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var buf bytes.Buffer
	if err := doc.WriteTable(&buf); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"LABEL", "D1", "QF", "DIP"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q", want)
		}
	}
}
