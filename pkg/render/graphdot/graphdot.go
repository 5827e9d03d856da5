// Package graphdot renders beamlines as directed graphs.
//
// Each element becomes one node, filled by geometry family, with edges
// following the sequence order. The DOT text renders to SVG in-process
// through Graphviz.
package graphdot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/beamforge/pkg/element"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/line"
)

// Options configures beamline graph rendering.
type Options struct {
	// Detailed includes the keyword and nominal length in node labels.
	// When false, only the element label is shown.
	Detailed bool
}

// ToDOT converts a beamline to Graphviz DOT format. The resulting string
// can be rendered with [RenderSVG].
func ToDOT(l *line.Line, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", l.Name())
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  nodesep=0.35;\n")
	buf.WriteString("\n")

	els := l.Elements()
	for _, el := range els {
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n",
			el.Label(), fmtLabel(el, opts.Detailed), fillColor(el.Family()))
	}

	buf.WriteString("\n")
	for i := 1; i < len(els); i++ {
		fmt.Fprintf(&buf, "  %q -> %q;\n", els[i-1].Label(), els[i].Label())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(el element.Element, detailed bool) string {
	if !detailed {
		return el.Label()
	}
	parts := []string{el.Label(), el.Keyword()}
	if l := el.Length().M(); l > 0 {
		parts = append(parts, fmt.Sprintf("%.3g m", l))
	}
	if curved, ok := el.(element.Curved); ok {
		parts = append(parts, fmt.Sprintf("%.3g deg", curved.AngularOpening().Deg()))
	}
	return strings.Join(parts, "\n")
}

// fillColor matches the schematic family palette.
func fillColor(f element.Family) string {
	switch f {
	case element.FamilyCartesian:
		return "#4e79a7"
	case element.FamilyPolar:
		return "#e15759"
	case element.FamilyPolarMulti:
		return "#f28e2b"
	case element.FamilyPoint:
		return "#d7d4cf"
	default:
		return "white"
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the outer svg tag so the document starts at
// the origin with pixel dimensions, which keeps downstream conversion and
// embedding predictable.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
