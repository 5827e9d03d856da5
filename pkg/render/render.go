package render

import (
	"bytes"
	"strings"

	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/line"
	"github.com/matzehuels/beamforge/pkg/render/chart"
	"github.com/matzehuels/beamforge/pkg/render/graphdot"
	"github.com/matzehuels/beamforge/pkg/render/schematic"
	"github.com/matzehuels/beamforge/pkg/survey"
)

// Format selects an output sink.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatDOT  Format = "dot"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatSVG, FormatDOT, FormatHTML, FormatJSON, FormatPDF, FormatPNG}
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q, valid formats: %s", s, formatList())
}

func formatList() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// Render produces the document in the given format. The dot format reads
// the line; every other format reads the survey document.
func Render(f Format, l *line.Line, doc *survey.Document) ([]byte, error) {
	switch f {
	case FormatDOT:
		if l == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "dot rendering requires a line")
		}
		return []byte(graphdot.ToDOT(l, graphdot.Options{Detailed: true})), nil
	}

	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s rendering requires a survey document", f)
	}
	switch f {
	case FormatSVG:
		return schematic.RenderSVG(doc), nil
	case FormatHTML:
		return chart.RenderHTML(doc)
	case FormatJSON:
		var buf bytes.Buffer
		if err := doc.WriteJSON(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatPDF:
		return ToPDF(schematic.RenderSVG(doc))
	case FormatPNG:
		return ToPNG(schematic.RenderSVG(doc), 2.0)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", f)
	}
}
