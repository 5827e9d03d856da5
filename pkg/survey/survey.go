// Package survey computes placement tables for beamlines.
//
// A survey places a line from an origin frame and records, per element,
// the entry, center and exit positions, in-plane headings and accumulated
// path lengths. The resulting document serializes to JSON for tooling, to
// BSON for the run archive, and to CSV or a fixed-width table for people.
package survey

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/beamforge/pkg/element"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/frame"
	"github.com/matzehuels/beamforge/pkg/line"
)

// Position is a point of the survey plane, in meters.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z" bson:"z"`
}

// Row is the survey record of one element.
type Row struct {
	Label   string `json:"label" bson:"label"`
	Keyword string `json:"keyword" bson:"keyword"`
	Family  string `json:"family" bson:"family"`

	SIn    float64 `json:"s_in" bson:"s_in"`
	SOut   float64 `json:"s_out" bson:"s_out"`
	Length float64 `json:"length" bson:"length"`

	Entry  Position `json:"entry" bson:"entry"`
	Center Position `json:"center" bson:"center"`
	Exit   Position `json:"exit" bson:"exit"`

	EntryHeading float64 `json:"entry_heading_deg" bson:"entry_heading_deg"`
	ExitHeading  float64 `json:"exit_heading_deg" bson:"exit_heading_deg"`

	// Arc metadata, polar families only.
	Radius          float64   `json:"radius,omitempty" bson:"radius,omitempty"`
	AngularOpening  float64   `json:"angular_opening_deg,omitempty" bson:"angular_opening_deg,omitempty"`
	ReferenceAngles []float64 `json:"reference_angles_deg,omitempty" bson:"reference_angles_deg,omitempty"`
}

// Document is a complete survey of one line.
type Document struct {
	Name        string   `json:"name" bson:"name"`
	Origin      Position `json:"origin" bson:"origin"`
	TotalLength float64  `json:"total_length" bson:"total_length"`
	Rows        []Row    `json:"rows" bson:"rows"`
}

// Compute places the line from origin and surveys every element in order.
func Compute(l *line.Line, origin frame.Frame) (*Document, error) {
	if err := l.Place(origin); err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "surveying %q", l.Name())
	}

	doc := &Document{
		Name:        l.Name(),
		Origin:      position(origin),
		TotalLength: l.Length().M(),
		Rows:        make([]Row, 0, l.Len()),
	}

	var s float64
	for _, el := range l.Elements() {
		entry, err := el.EntryPatched()
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "surveying %q", el.Label())
		}
		center, err := el.Center()
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "surveying %q", el.Label())
		}
		exit, err := el.Exit()
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "surveying %q", el.Label())
		}

		row := Row{
			Label:        el.Label(),
			Keyword:      el.Keyword(),
			Family:       el.Family().String(),
			SIn:          s,
			SOut:         s + el.Length().M(),
			Length:       el.Length().M(),
			Entry:        position(entry),
			Center:       position(center),
			Exit:         position(exit),
			EntryHeading: entry.Heading().Deg(),
			ExitHeading:  exit.Heading().Deg(),
		}
		if curved, ok := el.(element.Curved); ok {
			row.Radius = curved.Radius().M()
			row.AngularOpening = curved.AngularOpening().Deg()
			for _, a := range curved.ReferenceAngles() {
				row.ReferenceAngles = append(row.ReferenceAngles, a.Deg())
			}
		}

		doc.Rows = append(doc.Rows, row)
		s = row.SOut
	}
	return doc, nil
}

// Row returns the survey row for the given label.
func (d *Document) Row(label string) (Row, bool) {
	for _, r := range d.Rows {
		if r.Label == label {
			return r, true
		}
	}
	return Row{}, false
}

// WriteJSON writes the document as indented JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding survey")
	}
	return nil
}

// WriteCSV writes one record per row with a header line. Positions are
// flattened to entry/exit coordinates.
func (d *Document) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{
		"label", "keyword", "family", "s_in", "s_out", "length",
		"entry_x", "entry_y", "exit_x", "exit_y", "entry_heading_deg", "exit_heading_deg",
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing survey csv")
	}
	for _, r := range d.Rows {
		record := []string{
			r.Label, r.Keyword, r.Family,
			num(r.SIn), num(r.SOut), num(r.Length),
			num(r.Entry.X), num(r.Entry.Y), num(r.Exit.X), num(r.Exit.Y),
			num(r.EntryHeading), num(r.ExitHeading),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "writing survey csv")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing survey csv")
	}
	return nil
}

// WriteTable writes a fixed-width text table, the format the CLI prints.
func (d *Document) WriteTable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%-10s %-8s %10s %10s %12s %12s %10s\n",
		"LABEL", "KEYWORD", "S_IN", "S_OUT", "X", "Y", "HEADING"); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing survey table")
	}
	for _, r := range d.Rows {
		if _, err := fmt.Fprintf(w, "%-10s %-8s %10.4f %10.4f %12.6f %12.6f %10.4f\n",
			r.Label, r.Keyword, r.SIn, r.SOut, r.Exit.X, r.Exit.Y, r.ExitHeading); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "writing survey table")
		}
	}
	return nil
}

func position(f frame.Frame) Position {
	return Position{X: f.X().M(), Y: f.Y().M(), Z: f.Z().M()}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
