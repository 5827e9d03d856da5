// Package schematic renders survey documents as SVG floor plans.
//
// Elements are drawn in the survey plane: straight elements as boxes along
// their heading, curved elements as annular sectors swept about their
// center of curvature, markers as ticks across the axis. A Style controls
// the visual appearance; Flat is the default.
package schematic
