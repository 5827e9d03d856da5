package zgoubi

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/beamforge/pkg/element"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/line"
	"github.com/matzehuels/beamforge/pkg/units"
)

// trackColumns is the number of leading columns every track row carries:
// label, X, Y, Z, Yo, Zo, S, D. Extra columns are ignored.
const trackColumns = 8

// Row is one integration step of the tracked particle. The raw columns
// come from the tracer; the remaining fields are filled by Reproject.
type Row struct {
	Label   string
	X, Y, Z float64 // step coordinates in the element frame, m
	Yo, Zo  float64 // initial transverse coordinates, m
	S       float64 // integrated path length, m
	D       float64 // relative momentum p/p0

	SRef             float64 // path length along the placed line
	YT, YT0, ZT, ZT0 float64 // transverse excursions from the reference
	Angle            float64 // azimuth within the sector, rad
	R, R0            float64 // radius from the sector center, m
	X0, Y0           float64 // unrolled initial position, polar elements only
}

// Track is the parsed step-by-step output of one run.
type Track []Row

// ParseTrack reads a whitespace-separated track table: one row per
// integration step, blank lines and '#' comments skipped.
func ParseTrack(r io.Reader) (Track, error) {
	var t Track
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < trackColumns {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"track line %d: want %d columns, got %d", n, trackColumns, len(fields))
		}
		var vals [trackColumns - 1]float64
		for i, f := range fields[1:trackColumns] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "track line %d: column %d", n, i+2)
			}
			vals[i] = v
		}
		t = append(t, Row{
			Label: fields[0],
			X:     vals[0], Y: vals[1], Z: vals[2],
			Yo: vals[3], Zo: vals[4],
			S: vals[5], D: vals[6],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "reading track")
	}
	return t, nil
}

// ParseTrackFile reads a track table from disk.
func ParseTrackFile(path string) (Track, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "track file %q", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "track file %q", path)
	}
	defer f.Close()
	return ParseTrack(f)
}

// Reproject maps raw track rows into beamline coordinates, element by
// element. Each element also receives its sampled trajectory, resolving
// the entry and exit path lengths used by the adjustment. Rows whose
// label matches no element are returned unchanged.
//
// Cartesian elements shift the step abscissa by the element's entry path
// length. Polar elements read the abscissa as an azimuthal step of 10
// milliradians, unroll the sector about its center and rewrite X and Y
// as positions in the sector plane; spiral sectors measure azimuths from
// the sector entrance instead of mid-sector.
func Reproject(t Track, l *line.Line) Track {
	out := make(Track, len(t))
	copy(out, t)
	for _, el := range l.Elements() {
		idx := rowsFor(out, el.Label())
		if len(idx) == 0 {
			continue
		}

		traj := &element.Trajectory{S: make([]units.Length, 0, len(idx))}
		for _, i := range idx {
			traj.S = append(traj.S, units.Meters(out[i].S))
		}
		el.SetTrajectory(traj)
		entryS := el.EntryS().M()

		switch v := el.(type) {
		case *element.FFAGSpirale:
			polarAdjust(out, idx, v.Radius().M(), v.AngularOpening().Rad()/2, entryS)
		case element.Curved:
			polarAdjust(out, idx, v.Radius().M(), 0, entryS)
		default:
			cartesianAdjust(out, idx, entryS)
		}
	}
	return out
}

func rowsFor(t Track, label string) []int {
	var idx []int
	for i := range t {
		if t[i].Label == label {
			idx = append(idx, i)
		}
	}
	return idx
}

func cartesianAdjust(t Track, idx []int, entryS float64) {
	for _, i := range idx {
		r := &t[i]
		r.SRef = r.X + entryS
		r.YT, r.YT0 = r.Y, r.Yo
		r.ZT, r.ZT0 = r.Z, r.Zo
	}
}

func polarAdjust(t Track, idx []int, radius, shift, entryS float64) {
	for _, i := range idx {
		r := &t[i]
		angle := 100*r.X + shift
		r.Angle = angle
		r.R, r.R0 = r.Y, r.Yo
		r.SRef = radius*angle + entryS
		r.YT, r.YT0 = r.Y-radius, r.Yo-radius
		r.ZT, r.ZT0 = r.Z, r.Zo
		sin, cos := math.Sincos(angle)
		r.X, r.X0 = r.Y*sin, r.Yo*sin
		r.Y, r.Y0 = r.Y*cos-radius, r.Yo*cos-radius
	}
}
