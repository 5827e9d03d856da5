// Package render dispatches beamline surveys to output sinks.
//
// # Formats
//
// [Render] routes a placed line and its survey document to one of the
// output sinks by [Format]:
//
//   - svg: floor-plan schematic (in [schematic] subpackage)
//   - dot: beamline digraph (in [graphdot] subpackage)
//   - html: interactive chart (in [chart] subpackage)
//   - json: the survey document itself
//   - pdf, png: the floor plan converted through rsvg-convert
//
// # Conversion
//
// [ToPDF] and [ToPNG] convert any SVG to other formats using the external
// rsvg-convert tool from librsvg.
//
//	svg := schematic.RenderSVG(doc)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [schematic]: github.com/matzehuels/beamforge/pkg/render/schematic
// [graphdot]: github.com/matzehuels/beamforge/pkg/render/graphdot
// [chart]: github.com/matzehuels/beamforge/pkg/render/chart
package render
