// Package manifest loads beamline descriptions from TOML documents.
//
// # Format
//
// A manifest names a lattice, optionally fixes the reference kinematics,
// declares a catalog of elements and composes them into named sequences:
//
//	name = "demo"
//
//	[kinematics]
//	particle = "proton"
//	energy_mev = 230.0
//
//	[[elements]]
//	label = "D1"
//	type = "drift"
//	length_m = 1.0
//
//	[[elements]]
//	label = "QF"
//	type = "quadrupole"
//	length_m = 0.3
//
//	[sequences]
//	cell = ["QF", "D1"]
//	ring = ["cell", "cell", "cell", "cell"]
//
// Sequence entries reference element labels or other sequence names;
// expansion is depth-first and rejects recursive composition. Every
// occurrence of an element in an expanded sequence becomes a fresh
// element, with repeated labels uniqued as QF, QF.2, QF.3 so a placed
// line never aliases placement state between occurrences.
//
// # Units
//
// Scalar fields carry their unit in the key name: length_m, field_t,
// opening_deg. Angles are degrees, lengths meters, fields tesla.
package manifest
