package schematic

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/beamforge/pkg/survey"
)

const (
	defaultWidth     = 1200.0
	defaultMargin    = 40.0
	defaultHalfWidth = 0.25 // element half-width in survey meters
)

// Option configures floor-plan rendering.
type Option func(*renderer)

type renderer struct {
	width     float64
	margin    float64
	halfWidth float64
	style     Style
	labels    bool
}

// WithWidth sets the page width in pixels.
func WithWidth(px float64) Option {
	return func(r *renderer) {
		if px > 0 {
			r.width = px
		}
	}
}

// WithStyle sets the rendering style.
func WithStyle(s Style) Option { return func(r *renderer) { r.style = s } }

// WithHalfWidth sets the element half-width in meters.
func WithHalfWidth(m float64) Option {
	return func(r *renderer) {
		if m > 0 {
			r.halfWidth = m
		}
	}
}

// WithoutLabels suppresses element labels.
func WithoutLabels() Option { return func(r *renderer) { r.labels = false } }

// RenderSVG draws the survey document as an SVG floor plan.
func RenderSVG(doc *survey.Document, opts ...Option) []byte {
	r := renderer{
		width:     defaultWidth,
		margin:    defaultMargin,
		halfWidth: defaultHalfWidth,
		style:     Flat{},
		labels:    true,
	}
	for _, opt := range opts {
		opt(&r)
	}

	pg := fitPage(doc, r.width, r.margin, r.halfWidth)

	shapes := make([]Shape, 0, len(doc.Rows))
	for _, row := range doc.Rows {
		shapes = append(shapes, r.shape(pg, row))
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %.1f %.1f\" width=\"%.0f\" height=\"%.0f\">\n",
		pg.width, pg.height, pg.width, pg.height)
	r.style.RenderDefs(&buf)
	r.style.RenderAxis(&buf, axisPath(pg, doc))
	for _, s := range shapes {
		r.style.RenderElement(&buf, s)
	}
	if r.labels {
		for _, s := range shapes {
			r.style.RenderLabel(&buf, s)
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// page maps survey coordinates onto the SVG canvas: uniform scale, origin
// at the top-left, Y pointing down.
type page struct {
	scale         float64
	minX, maxY    float64
	margin        float64
	width, height float64
}

func (p page) pt(pos survey.Position) (float64, float64) {
	return p.margin + (pos.X-p.minX)*p.scale, p.margin + (p.maxY-pos.Y)*p.scale
}

func fitPage(doc *survey.Document, width, margin, halfWidth float64) page {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	for _, row := range doc.Rows {
		grow(row.Entry.X, row.Entry.Y)
		grow(row.Exit.X, row.Exit.Y)
		if isPolar(row) {
			grow(arcMid(row))
		}
	}
	if math.IsInf(minX, 1) {
		minX, maxX, minY, maxY = 0, 0, 0, 0
	}
	minX, maxX = minX-halfWidth, maxX+halfWidth
	minY, maxY = minY-halfWidth, maxY+halfWidth

	span := math.Max(math.Max(maxX-minX, maxY-minY), 1)
	scale := (width - 2*margin) / span
	return page{
		scale:  scale,
		minX:   minX,
		maxY:   maxY,
		margin: margin,
		width:  width,
		height: (maxY-minY)*scale + 2*margin,
	}
}

func isPolar(row survey.Row) bool {
	return row.Family == "polar" || row.Family == "polar-multi"
}

// arcMid returns the survey-plane point at the middle of a polar row's
// sweep, used to bound the page.
func arcMid(row survey.Row) (float64, float64) {
	cx, cy := row.Center.X, row.Center.Y
	vx, vy := row.Entry.X-cx, row.Entry.Y-cy
	half := row.AngularOpening * math.Pi / 360
	cross := vx*(row.Exit.Y-cy) - vy*(row.Exit.X-cx)
	if cross < 0 {
		half = -half
	}
	sin, cos := math.Sincos(half)
	return cx + vx*cos - vy*sin, cy + vx*sin + vy*cos
}

func (r *renderer) shape(pg page, row survey.Row) Shape {
	switch {
	case isPolar(row):
		return r.sector(pg, row)
	case row.Family == "point":
		return r.tick(pg, row)
	default:
		return r.box(pg, row)
	}
}

// box draws a straight element as a rectangle along its heading.
func (r *renderer) box(pg page, row survey.Row) Shape {
	ex, ey := pg.pt(row.Entry)
	xx, xy := pg.pt(row.Exit)
	dx, dy := xx-ex, xy-ey
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return r.tick(pg, row)
	}
	nx, ny := -dy/l, dx/l
	w := r.halfWidth * pg.scale
	path := fmt.Sprintf("M %.2f %.2f L %.2f %.2f L %.2f %.2f L %.2f %.2f Z",
		ex+nx*w, ey+ny*w, xx+nx*w, xy+ny*w, xx-nx*w, xy-ny*w, ex-nx*w, ey-ny*w)

	// Labels sit on the upward side and read left to right.
	lx, ly := nx, ny
	if ly > 0 {
		lx, ly = -lx, -ly
	}
	rot := math.Atan2(dy, dx) * 180 / math.Pi
	switch {
	case rot > 90:
		rot -= 180
	case rot < -90:
		rot += 180
	}
	return Shape{
		Label:    row.Label,
		Keyword:  row.Keyword,
		Family:   row.Family,
		Path:     path,
		CX:       (ex+xx)/2 + lx*(w+12),
		CY:       (ey+xy)/2 + ly*(w+12),
		Rotation: rot,
	}
}

// sector draws a curved element as an annular sector about its center of
// curvature.
func (r *renderer) sector(pg page, row survey.Row) Shape {
	cx, cy := pg.pt(row.Center)
	ex, ey := pg.pt(row.Entry)
	xx, xy := pg.pt(row.Exit)

	uex, uey := unit(ex-cx, ey-cy)
	uxx, uxy := unit(xx-cx, xy-cy)
	w := r.halfWidth * pg.scale
	ro := row.Radius*pg.scale + w
	ri := math.Max(row.Radius*pg.scale-w, 1)

	// Page Y points down, so a positive cross product means the sweep
	// follows increasing SVG angle.
	sweep, large := 0, 0
	if (ex-cx)*(xy-cy)-(ey-cy)*(xx-cx) > 0 {
		sweep = 1
	}
	if row.AngularOpening > 180 {
		large = 1
		sweep = 1 - sweep
	}

	path := fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 %d %d %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d %d %.2f %.2f Z",
		cx+uex*ro, cy+uey*ro,
		ro, ro, large, sweep,
		cx+uxx*ro, cy+uxy*ro,
		cx+uxx*ri, cy+uxy*ri,
		ri, ri, large, 1-sweep,
		cx+uex*ri, cy+uey*ri)

	mx, my := unit(uex+uxx, uey+uxy)
	if mx == 0 && my == 0 {
		mx, my = uex, uey
	}
	return Shape{
		Label:   row.Label,
		Keyword: row.Keyword,
		Family:  row.Family,
		Path:    path,
		CX:      cx + mx*(ro+14),
		CY:      cy + my*(ro+14),
	}
}

// tick draws a marker as a short stroke across the axis.
func (r *renderer) tick(pg page, row survey.Row) Shape {
	x, y := pg.pt(row.Entry)
	h := row.EntryHeading * math.Pi / 180
	nx, ny := math.Sin(h), math.Cos(h)
	w := 0.8 * r.halfWidth * pg.scale
	return Shape{
		Label:   row.Label,
		Keyword: row.Keyword,
		Family:  "point",
		Path:    fmt.Sprintf("M %.2f %.2f L %.2f %.2f", x-nx*w, y-ny*w, x+nx*w, y+ny*w),
		CX:      x,
		CY:      y - w - 8,
	}
}

// axisPath traces the reference trajectory: straight segments between
// frames, arc segments through curved elements.
func axisPath(pg page, doc *survey.Document) string {
	if len(doc.Rows) == 0 {
		return ""
	}
	var b strings.Builder
	sx, sy := pg.pt(doc.Rows[0].Entry)
	fmt.Fprintf(&b, "M %.2f %.2f", sx, sy)
	for _, row := range doc.Rows {
		ex, ey := pg.pt(row.Entry)
		xx, xy := pg.pt(row.Exit)
		fmt.Fprintf(&b, " L %.2f %.2f", ex, ey)
		if isPolar(row) {
			cx, cy := pg.pt(row.Center)
			sweep, large := 0, 0
			if (ex-cx)*(xy-cy)-(ey-cy)*(xx-cx) > 0 {
				sweep = 1
			}
			if row.AngularOpening > 180 {
				large = 1
				sweep = 1 - sweep
			}
			rad := row.Radius * pg.scale
			fmt.Fprintf(&b, " A %.2f %.2f 0 %d %d %.2f %.2f", rad, rad, large, sweep, xx, xy)
			continue
		}
		fmt.Fprintf(&b, " L %.2f %.2f", xx, xy)
	}
	return b.String()
}

func unit(x, y float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l < 1e-12 {
		return 0, 0
	}
	return x / l, y / l
}
