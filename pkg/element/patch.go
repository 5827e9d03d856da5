package element

import (
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/frame"
	"github.com/matzehuels/beamforge/pkg/units"
)

// geometry derives the patched frames of one geometry family. Each method
// receives the already-resolved frames it builds on.
type geometry interface {
	patchEntry(entry frame.Frame) (frame.Frame, error)
	patchCenter(entry, entryPatched frame.Frame) (frame.Frame, error)
	patchExit(entry, entryPatched, center frame.Frame) (frame.Frame, error)
	patchExitPatched(entry, exit frame.Frame) (frame.Frame, error)
}

// point is the geometry of zero-extent elements: every frame coincides
// with the entry.
type point struct{}

func (point) patchEntry(entry frame.Frame) (frame.Frame, error) {
	return entry, nil
}

func (point) patchCenter(entry, _ frame.Frame) (frame.Frame, error) {
	return entry, nil
}

func (point) patchExit(_, entryPatched, _ frame.Frame) (frame.Frame, error) {
	return entryPatched, nil
}

func (point) patchExitPatched(_, exit frame.Frame) (frame.Frame, error) {
	return exit, nil
}

// patch holds an element's placement state: the stored entry frame and the
// lazily derived frames. The derived frames live and die as one unit; a
// new placement or ClearPlacement drops all of them, never one alone.
type patch struct {
	label  string
	geo    geometry
	length units.Length

	entry        *frame.Frame
	entryPatched *frame.Frame
	center       *frame.Frame
	exit         *frame.Frame
	exitPatched  *frame.Frame

	traj *Trajectory
}

func newPatch(label string, geo geometry, length units.Length) patch {
	return patch{label: label, geo: geo, length: length}
}

// Label returns the element's unique name.
func (p *patch) Label() string { return p.label }

// Length returns the nominal length along the reference path.
func (p *patch) Length() units.Length { return p.length }

// Place stores a copy of f as the entry frame, clearing any previous
// placement first.
func (p *patch) Place(f frame.Frame) {
	p.ClearPlacement()
	entry := f
	p.entry = &entry
}

// ClearPlacement drops the entry frame and every derived frame.
func (p *patch) ClearPlacement() {
	p.entry = nil
	p.entryPatched = nil
	p.center = nil
	p.exit = nil
	p.exitPatched = nil
}

// Placed reports whether the element currently has an entry frame.
func (p *patch) Placed() bool { return p.entry != nil }

// Entry returns the stored entry frame.
func (p *patch) Entry() (frame.Frame, error) {
	if p.entry == nil {
		return frame.Frame{}, errors.New(errors.ErrCodeNotPlaced, "element %q has not been placed", p.label)
	}
	return *p.entry, nil
}

// EntryPatched returns the entry frame corrected for positioning.
func (p *patch) EntryPatched() (frame.Frame, error) {
	if p.entryPatched == nil {
		entry, err := p.Entry()
		if err != nil {
			return frame.Frame{}, err
		}
		f, err := p.geo.patchEntry(entry)
		if err != nil {
			return frame.Frame{}, err
		}
		p.entryPatched = &f
	}
	return *p.entryPatched, nil
}

// Center returns the element's reference frame.
func (p *patch) Center() (frame.Frame, error) {
	if p.center == nil {
		entry, err := p.Entry()
		if err != nil {
			return frame.Frame{}, err
		}
		ep, err := p.EntryPatched()
		if err != nil {
			return frame.Frame{}, err
		}
		f, err := p.geo.patchCenter(entry, ep)
		if err != nil {
			return frame.Frame{}, err
		}
		p.center = &f
	}
	return *p.center, nil
}

// Exit returns the frame at the far end of the element body.
func (p *patch) Exit() (frame.Frame, error) {
	if p.exit == nil {
		entry, err := p.Entry()
		if err != nil {
			return frame.Frame{}, err
		}
		ep, err := p.EntryPatched()
		if err != nil {
			return frame.Frame{}, err
		}
		center, err := p.Center()
		if err != nil {
			return frame.Frame{}, err
		}
		f, err := p.geo.patchExit(entry, ep, center)
		if err != nil {
			return frame.Frame{}, err
		}
		p.exit = &f
	}
	return *p.exit, nil
}

// ExitPatched returns the frame the next element is placed against.
func (p *patch) ExitPatched() (frame.Frame, error) {
	if p.exitPatched == nil {
		entry, err := p.Entry()
		if err != nil {
			return frame.Frame{}, err
		}
		exit, err := p.Exit()
		if err != nil {
			return frame.Frame{}, err
		}
		f, err := p.geo.patchExitPatched(entry, exit)
		if err != nil {
			return frame.Frame{}, err
		}
		p.exitPatched = &f
	}
	return *p.exitPatched, nil
}

// SetTrajectory attaches the reference trajectory recovered from a tracer
// run. Passing nil detaches it.
func (p *patch) SetTrajectory(t *Trajectory) { p.traj = t }

// trajectory returns the attached trajectory, nil if none.
func (p *patch) trajectory() *Trajectory { return p.traj }

// EntryS returns the path length at the element entrance, 0 without a
// trajectory.
func (p *patch) EntryS() units.Length {
	if p.traj == nil || len(p.traj.S) == 0 {
		return 0
	}
	return p.traj.MinS()
}

// ExitS returns the path length at the element exit, 0 without a
// trajectory.
func (p *patch) ExitS() units.Length {
	if p.traj == nil || len(p.traj.S) == 0 {
		return 0
	}
	return p.traj.MaxS()
}

// OpticalLength returns the path length covered inside the element, 0
// without a trajectory.
func (p *patch) OpticalLength() units.Length {
	if p.traj == nil || len(p.traj.S) == 0 {
		return 0
	}
	return p.traj.MaxS() - p.traj.MinS()
}

// Trajectory is a sampled reference path through one element, recovered
// from the tracer's step-by-step output. Samples are ordered as they were
// integrated.
type Trajectory struct {
	S []units.Length // accumulated path length of each sample
}

// MinS returns the smallest path length sample, 0 when empty.
func (t *Trajectory) MinS() units.Length {
	if len(t.S) == 0 {
		return 0
	}
	m := t.S[0]
	for _, s := range t.S[1:] {
		if s < m {
			m = s
		}
	}
	return m
}

// MaxS returns the largest path length sample, 0 when empty.
func (t *Trajectory) MaxS() units.Length {
	if len(t.S) == 0 {
		return 0
	}
	m := t.S[0]
	for _, s := range t.S[1:] {
		if s > m {
			m = s
		}
	}
	return m
}
