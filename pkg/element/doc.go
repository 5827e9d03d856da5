// Package element implements the beamline elements and the placement
// engine that positions them in space.
//
// # Architecture
//
// Every element carries a bundle of five reference frames:
//
//	entry          where the element was placed
//	entry_patched  entry corrected for offsets, tilts and field extents
//	center         the element's reference point
//	exit           the far end of the element body
//	exit_patched   the frame the next element is placed against
//
// The entry frame is stored by [Element.Place]; the other four are derived
// lazily, cached, and thrown away together by ClearPlacement. How they are
// derived depends on the element's geometry family:
//
//   - point: all frames coincide with the entry
//   - cartesian: straight axis with transverse offsets and a tilt,
//     positioned by one of the tracer's KPOS conventions
//   - polar: curved axis swept about a center of curvature
//   - polar multi: a polar envelope shared by up to five effective field
//     boundaries (EFBs)
//
// Accessing a derived frame before the element is placed is an error, as
// is automatic positioning (KPOS 3) without reference kinematics. Both are
// reported with coded errors from [github.com/matzehuels/beamforge/pkg/errors].
//
// # Usage
//
//	qf, err := element.NewQuadrupole("QF", element.QuadrupoleParams{
//		Length:   units.Centimeters(30),
//		Aperture: units.Centimeters(5),
//		Field:    units.Tesla(1.1),
//	})
//	if err != nil { ... }
//
//	qf.Place(frame.Identity())
//	exit, err := qf.ExitPatched()
//
// Elements are not safe for concurrent use; a placement pass owns its
// elements until it completes.
package element
