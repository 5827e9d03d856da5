// Package zgoubi couples a beamline to the Zgoubi ray-tracing code.
//
// The package covers the three sides of a tracer round trip: rendering a
// line into an input deck, executing the tracer binary, and recovering
// the stepwise track output into beamline coordinates.
//
// # Decks
//
// Render produces a complete zgoubi.dat for a line: a title line, the
// OBJET and PARTICUL preamble fixed by the reference kinematics, one
// keyword block per element in sequence order and the END terminator.
// Blocks use the tracer's units (centimeters, kilogauss, degrees for
// polar azimuths, radians for tilts) in fixed scientific notation. Scan
// renders one deck per relative momentum offset for chromatic studies.
//
// # Runs
//
// A Runner executes decks in isolated work directories named after the
// input and a fresh uuid, so concurrent runs never share state. RunAll
// dispatches a batch over a bounded worker pool and returns results in
// input order. Captured output includes the merged stdout/stderr stream,
// the reported CPU time and the paths of the result and track files.
//
// # Tracks
//
// ParseTrack reads the reduced track table written by the tracer
// post-processing step, one row per integration step. Reproject applies
// the per-family coordinate adjustment: cartesian elements offset the
// path length by the element's entry abscissa, polar elements unroll the
// sector so the azimuthal step coordinate becomes a global position.
package zgoubi
