// Package chart renders surveys as interactive HTML charts.
//
// The floor plan is a scatter of element positions in the survey plane
// with the reference axis drawn through them; an optional second chart
// plots the exit heading against the path length.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/survey"
)

// Option configures chart rendering.
type Option func(*builder)

type builder struct {
	width   string
	height  string
	heading bool
}

// WithSize sets the chart canvas size, e.g. "900px", "600px".
func WithSize(width, height string) Option {
	return func(b *builder) {
		if width != "" {
			b.width = width
		}
		if height != "" {
			b.height = height
		}
	}
}

// WithHeadingChart appends a path-length versus exit-heading line chart.
func WithHeadingChart() Option { return func(b *builder) { b.heading = true } }

// WriteHTML renders the survey document as an HTML page to w.
func WriteHTML(doc *survey.Document, w io.Writer, options ...Option) error {
	b := builder{width: "900px", height: "600px"}
	for _, opt := range options {
		opt(&b)
	}

	page := components.NewPage()
	page.PageTitle = doc.Name
	page.AddCharts(b.floorPlan(doc))
	if b.heading {
		page.AddCharts(b.headingChart(doc))
	}
	if err := page.Render(w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "rendering chart for %q", doc.Name)
	}
	return nil
}

// RenderHTML renders the survey document as an HTML page.
func RenderHTML(doc *survey.Document, options ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteHTML(doc, &buf, options...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *builder) floorPlan(doc *survey.Document) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: doc.Name,
			Width:     b.width,
			Height:    b.height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    doc.Name,
			Subtitle: fmt.Sprintf("%d elements, %.3g m", len(doc.Rows), doc.TotalLength),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: "{b}"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y (m)"}),
	)

	for _, fam := range familyOrder(doc) {
		var data []opts.ScatterData
		for _, row := range doc.Rows {
			if row.Family != fam {
				continue
			}
			data = append(data, opts.ScatterData{
				Name:  fmt.Sprintf("%s (%s)", row.Label, row.Keyword),
				Value: []interface{}{row.Entry.X, row.Entry.Y},
			})
		}
		scatter.AddSeries(fam, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	}

	scatter.Overlap(b.axisLine(doc))
	return scatter
}

// axisLine traces the reference trajectory through every frame.
func (b *builder) axisLine(doc *survey.Document) *charts.Line {
	var data []opts.LineData
	for _, row := range doc.Rows {
		data = append(data, opts.LineData{Value: []interface{}{row.Entry.X, row.Entry.Y}})
	}
	if n := len(doc.Rows); n > 0 {
		last := doc.Rows[n-1]
		data = append(data, opts.LineData{Value: []interface{}{last.Exit.X, last.Exit.Y}})
	}

	axis := charts.NewLine()
	axis.AddSeries("axis", data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return axis
}

func (b *builder) headingChart(doc *survey.Document) *charts.Line {
	xs := make([]string, 0, len(doc.Rows))
	ys := make([]opts.LineData, 0, len(doc.Rows))
	for _, row := range doc.Rows {
		xs = append(xs, strconv.FormatFloat(row.SOut, 'f', 2, 64))
		ys = append(ys, opts.LineData{Value: row.ExitHeading})
	}

	l := charts.NewLine()
	l.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: b.width, Height: "300px"}),
		charts.WithTitleOpts(opts.Title{Title: "heading"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "s (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "heading (deg)"}),
	)
	l.SetXAxis(xs).AddSeries("heading", ys)
	return l
}

// familyOrder returns the families present in first-appearance order, so
// series keep a stable legend.
func familyOrder(doc *survey.Document) []string {
	var order []string
	seen := map[string]bool{}
	for _, row := range doc.Rows {
		if !seen[row.Family] {
			seen[row.Family] = true
			order = append(order, row.Family)
		}
	}
	return order
}
