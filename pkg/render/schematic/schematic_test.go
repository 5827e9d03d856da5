package schematic

import (
	"strings"
	"testing"

	"github.com/matzehuels/beamforge/pkg/element"
	"github.com/matzehuels/beamforge/pkg/frame"
	"github.com/matzehuels/beamforge/pkg/line"
	"github.com/matzehuels/beamforge/pkg/survey"
	"github.com/matzehuels/beamforge/pkg/units"
)

func mustEl(t *testing.T) func(element.Element, error) element.Element {
	t.Helper()
	return func(el element.Element, err error) element.Element {
		t.Helper()
		if err != nil {
			t.Fatalf("element: %v", err)
		}
		return el
	}
}

func testDoc(t *testing.T) *survey.Document {
	t.Helper()
	mk := mustEl(t)
	l, err := line.New("arc", []element.Element{
		mk(element.NewDrift("D1", units.Meters(1))),
		mk(element.NewDipole("DIP", element.DipoleParams{
			AngularOpening: units.Degrees(90),
			Radius:         units.Meters(2),
		})),
		mk(element.NewMarker("M1")),
		mk(element.NewDrift("D2", units.Meters(1))),
	})
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	doc, err := survey.Compute(l, frame.Identity())
	if err != nil {
		t.Fatalf("survey: %v", err)
	}
	return doc
}

// shapeLine returns the SVG line carrying the given element id.
func shapeLine(t *testing.T, svg, id string) string {
	t.Helper()
	for _, ln := range strings.Split(svg, "\n") {
		if strings.Contains(ln, `id="el-`+id+`"`) {
			return ln
		}
	}
	t.Fatalf("svg has no shape for %q:\n%s", id, svg)
	return ""
}

func TestRenderSVGStructure(t *testing.T) {
	svg := string(RenderSVG(testDoc(t)))

	if !strings.HasPrefix(svg, "<svg xmlns=") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not a complete SVG document:\n%s", svg)
	}
	if !strings.Contains(svg, `viewBox="0 0 `) {
		t.Errorf("missing viewBox")
	}
	if got := strings.Count(svg, `class="element"`); got != 4 {
		t.Errorf("got %d element shapes, want 4", got)
	}
	if !strings.Contains(svg, `class="axis"`) {
		t.Errorf("missing reference axis")
	}
	for _, label := range []string{">D1<", ">DIP<", ">M1<", ">D2<"} {
		if !strings.Contains(svg, label) {
			t.Errorf("missing label %s", label)
		}
	}
}

func TestRenderSVGSectorUsesArc(t *testing.T) {
	svg := string(RenderSVG(testDoc(t)))

	dip := shapeLine(t, svg, "DIP")
	if !strings.Contains(dip, " A ") {
		t.Errorf("sector path has no arc command: %s", dip)
	}
	d1 := shapeLine(t, svg, "D1")
	if strings.Contains(d1, " A ") {
		t.Errorf("straight element drawn with an arc: %s", d1)
	}
}

func TestRenderSVGMarkerTick(t *testing.T) {
	svg := string(RenderSVG(testDoc(t)))

	m1 := shapeLine(t, svg, "M1")
	if !strings.Contains(m1, `fill="none"`) || !strings.Contains(m1, `stroke-width="2"`) {
		t.Errorf("marker not drawn as a tick: %s", m1)
	}
}

func TestRenderSVGOptions(t *testing.T) {
	doc := testDoc(t)

	svg := string(RenderSVG(doc, WithWidth(800)))
	if !strings.Contains(svg, `width="800"`) {
		t.Errorf("custom width not applied")
	}

	svg = string(RenderSVG(doc, WithoutLabels()))
	if strings.Contains(svg, `class="label"`) {
		t.Errorf("labels rendered despite WithoutLabels")
	}

	svg = string(RenderSVG(doc, WithStyle(Flat{Palette: Palette{"polar": "#123456"}})))
	if !strings.Contains(svg, "#123456") {
		t.Errorf("custom palette not applied")
	}
}

func TestRenderSVGEmptyDocument(t *testing.T) {
	svg := string(RenderSVG(&survey.Document{Name: "empty"}))

	if !strings.HasPrefix(svg, "<svg xmlns=") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not a complete SVG document:\n%s", svg)
	}
	if strings.Contains(svg, `class="element"`) {
		t.Errorf("empty document rendered shapes")
	}
}

func TestDefaultPaletteCoversFamilies(t *testing.T) {
	p := DefaultPalette()
	for _, fam := range []string{"cartesian", "polar", "polar-multi", "point"} {
		if _, ok := p[fam]; !ok {
			t.Errorf("palette missing family %q", fam)
		}
	}
}
