// Package line models a beamline as an ordered sequence of elements and
// drives their placement.
//
// A [Line] owns the order, not the geometry: placing a line walks the
// sequence and hands each element the previous element's patched exit
// frame, so the inter-element coupling stays a pure data dependency.
// Elements keep their own frame bundles; the line can be re-placed from a
// different origin at any time.
package line

import (
	"github.com/matzehuels/beamforge/pkg/element"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/frame"
	"github.com/matzehuels/beamforge/pkg/units"
)

// Line is an ordered beamline with unique element labels.
type Line struct {
	name     string
	elements []element.Element
	byLabel  map[string]element.Element
}

// New returns a line over the given elements, in order. Labels must be
// unique across the line.
func New(name string, elements []element.Element) (*Line, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "line name must not be empty")
	}
	byLabel := make(map[string]element.Element, len(elements))
	for i, el := range elements {
		if el == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "line %q: element %d is nil", name, i)
		}
		label := el.Label()
		if _, ok := byLabel[label]; ok {
			return nil, errors.New(errors.ErrCodeInconsistent, "line %q: duplicate element label %q", name, label)
		}
		byLabel[label] = el
	}
	return &Line{
		name:     name,
		elements: append([]element.Element(nil), elements...),
		byLabel:  byLabel,
	}, nil
}

// Name returns the line's name.
func (l *Line) Name() string { return l.name }

// Len returns the number of elements.
func (l *Line) Len() int { return len(l.elements) }

// Elements returns the elements in beamline order.
func (l *Line) Elements() []element.Element {
	return append([]element.Element(nil), l.elements...)
}

// Element returns the element with the given label.
func (l *Line) Element(label string) (element.Element, error) {
	el, ok := l.byLabel[label]
	if !ok {
		return nil, errors.New(errors.ErrCodeElementNotFound, "line %q has no element %q", l.name, label)
	}
	return el, nil
}

// Length returns the sum of the nominal element lengths.
func (l *Line) Length() units.Length {
	var total units.Length
	for _, el := range l.elements {
		total += el.Length()
	}
	return total
}

// Place positions every element in order, starting from origin. Each
// element's entry frame is the previous element's patched exit. A failure
// stops the walk; elements before the failure keep their placement.
func (l *Line) Place(origin frame.Frame) error {
	cursor := origin
	for _, el := range l.elements {
		el.Place(cursor)
		next, err := el.ExitPatched()
		if err != nil {
			return errors.Wrap(errors.GetCode(err), err, "line %q: placing element %q", l.name, el.Label())
		}
		cursor = next
	}
	return nil
}

// ClearPlacement drops the placement of every element.
func (l *Line) ClearPlacement() {
	for _, el := range l.elements {
		el.ClearPlacement()
	}
}

// Placed reports whether every element currently has a placement.
func (l *Line) Placed() bool {
	for _, el := range l.elements {
		if !el.Placed() {
			return false
		}
	}
	return len(l.elements) > 0
}
