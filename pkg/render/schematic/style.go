package schematic

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Style defines the visual appearance of a floor plan.
// Implementations control how elements, labels and the reference axis are
// drawn.
type Style interface {
	// RenderDefs writes SVG <defs> and <style> content.
	RenderDefs(buf *bytes.Buffer)
	// RenderElement writes the SVG for one element outline.
	RenderElement(buf *bytes.Buffer, s Shape)
	// RenderLabel writes the SVG for one element label.
	RenderLabel(buf *bytes.Buffer, s Shape)
	// RenderAxis writes the SVG for the reference axis path.
	RenderAxis(buf *bytes.Buffer, path string)
}

// Shape is one element of the floor plan, scaled to page coordinates.
type Shape struct {
	Label   string
	Keyword string
	Family  string // geometry family name, keys the palette

	Path     string  // outline path data
	CX, CY   float64 // label anchor
	Rotation float64 // label rotation, degrees
}

// Palette maps geometry family names to fill colors.
type Palette map[string]string

// DefaultPalette colors straight magnets blue, sector magnets red,
// multi-region sectors orange and markers grey.
func DefaultPalette() Palette {
	return Palette{
		"cartesian":   "#4e79a7",
		"polar":       "#e15759",
		"polar-multi": "#f28e2b",
		"point":       "#79706e",
	}
}

// Flat is the default style: filled outlines, a dashed hairline axis and
// upright sans-serif labels.
type Flat struct {
	Palette Palette // nil falls back to DefaultPalette
}

var _ Style = Flat{}

func (f Flat) fill(family string) string {
	p := f.Palette
	if p == nil {
		p = DefaultPalette()
	}
	if c, ok := p[family]; ok {
		return c
	}
	return "#bab0ac"
}

func (f Flat) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <style>.label{font-family:Helvetica,Arial,sans-serif;fill:#2b2b33}</style>\n")
}

func (f Flat) RenderElement(buf *bytes.Buffer, s Shape) {
	if s.Family == "point" {
		fmt.Fprintf(buf, "  <path id=\"el-%s\" class=\"element\" d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\"/>\n",
			escapeXML(s.Label), s.Path, f.fill(s.Family))
		return
	}
	fmt.Fprintf(buf, "  <path id=\"el-%s\" class=\"element\" d=\"%s\" fill=\"%s\" fill-opacity=\"0.85\" stroke=\"#2b2b33\" stroke-width=\"1\"/>\n",
		escapeXML(s.Label), s.Path, f.fill(s.Family))
}

func (f Flat) RenderLabel(buf *bytes.Buffer, s Shape) {
	transform := ""
	if s.Rotation != 0 {
		transform = fmt.Sprintf(" transform=\"rotate(%.1f %.2f %.2f)\"", s.Rotation, s.CX, s.CY)
	}
	fmt.Fprintf(buf, "  <text class=\"label\" x=\"%.2f\" y=\"%.2f\" font-size=\"11\" text-anchor=\"middle\"%s>%s</text>\n",
		s.CX, s.CY, transform, escapeXML(s.Label))
}

func (f Flat) RenderAxis(buf *bytes.Buffer, path string) {
	if path == "" {
		return
	}
	fmt.Fprintf(buf, "  <path class=\"axis\" d=\"%s\" fill=\"none\" stroke=\"#666\" stroke-width=\"1\" stroke-dasharray=\"6 4\"/>\n", path)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
