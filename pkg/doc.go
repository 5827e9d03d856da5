// Package pkg provides the core libraries for Beamforge beamline surveying.
//
// # Overview
//
// Beamforge places the elements of a particle accelerator beamline in the
// global frame and drives tracking runs against the placed geometry. The pkg
// directory is organized into four main areas:
//
//  1. Domain - geometry and optics (units, kinematics, frame, element, line)
//  2. Manifest - TOML beamline descriptions and sequence expansion
//  3. Survey/Render - placement documents and their visual outputs
//  4. Infrastructure - caching, fetching, archiving, run orchestration
//
// # Architecture
//
// The typical data flow through Beamforge:
//
//	TOML manifest (file or URL)
//	         ↓
//	    [manifest] package (parse + expand a sequence)
//	         ↓
//	    [line] package (ordered elements, placement)
//	         ↓
//	    [survey] package (entry/center/exit rows in the global frame)
//	         ↓
//	    SVG/PNG/PDF/HTML/DOT/JSON output, or tracker decks
//
// # Quick Start
//
// Expand a sequence and render a schematic:
//
//	import (
//	    "github.com/matzehuels/beamforge/pkg/frame"
//	    "github.com/matzehuels/beamforge/pkg/manifest"
//	    "github.com/matzehuels/beamforge/pkg/render/schematic"
//	    "github.com/matzehuels/beamforge/pkg/survey"
//	)
//
//	// 1. Parse the manifest and expand a sequence
//	m, _ := manifest.ParseFile("examples/fodo.toml")
//	l, _ := m.Expand("fodo")
//
//	// 2. Survey the line from the origin
//	doc, _ := survey.Compute(l, frame.Identity())
//
//	// 3. Render to SVG
//	svg := schematic.RenderSVG(doc)
//
// # Main Packages
//
// ## Domain
//
// [units] - Quantity types (Length, Angle, Field, Energy, Momentum, Rigidity)
// with SI constructors and tracer-native accessors.
//
// [kinematics] - Reference particle state. Any one of energy, momentum,
// rigidity or gamma defines the rest.
//
// [frame] - Position and orientation in the global frame, built on gonum
// quaternion rotations. Frames compose, so a line placed at an offset origin
// carries every element with it.
//
// [element] - The element catalog: drifts, bends, quadrupoles and higher
// poles, multipoles, solenoids, sector dipoles and FFAG variants. Each
// element patches an entry frame into an exit frame.
//
// [line] - An ordered sequence of elements with one-shot placement.
//
// ## Manifest
//
// [manifest] - TOML beamline descriptions: an element catalog, named
// sequences (possibly nested), and reference kinematics. Expansion builds a
// fresh line with uniqued labels.
//
// ## Survey and rendering
//
// [survey] - The placement document: one row per element with s-positions,
// entry/center/exit coordinates, headings and polar metadata. Writers for
// table, JSON and CSV output.
//
// [render] - Format registry dispatching to the sinks:
//
//   - [render/schematic]: top-down SVG floor plan (plus PDF/PNG conversion)
//   - [render/chart]: interactive HTML floor plan via go-echarts
//   - [render/graphdot]: sequence graph as DOT via go-graphviz
//
// ## Tracking
//
// [zgoubi] - Tracker deck generation from a placed line and a worker pool
// that executes deck batches, parses CPU time and collects artifacts.
//
// [runlog] - Append-only record of tracker runs (memory and JSONL file
// backends).
//
// ## Infrastructure
//
// [pipeline] - The load → survey → render pipeline used by CLI and server.
// Content-hash keyed caching at the survey and render stages.
//
// [cache] - Cache interface with file, Redis and null backends.
//
// [httputil] - Caching, retrying HTTP client for remote manifests.
//
// [archive] - MongoDB archive for survey documents and run records.
//
// [observability] - Hook points for cache, pipeline and runner events.
//
// [errors] - Coded errors shared across the module.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/survey/...      # Specific package
//	go test -run Example          # Examples only
package pkg
