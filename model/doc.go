// Package model defines the records read from the star-system corpus.
//
// # Records
//
//   - System: one star system (name, coordinate, ordered bodies)
//   - Body: one physical body inside a system
//   - Coordinate: galactic position in light years
//
// Bodies reference their parent by index into the owning System's Bodies
// slice, never by pointer. A record is immutable once decoded and may be
// shared freely between goroutines.
//
// # Wire Format
//
// Shard files hold one JSON object per line:
//
//	{"name":"Alpha AB-C d1-23","id64":123,"coords":{"x":1,"y":2,"z":3},
//	 "bodies":[{"bodyId":0,"type":"Star","subType":"M (Red dwarf) Star"},
//	           {"bodyId":1,"type":"Planet","subType":"Rocky body","parent":0}]}
//
// Parents may also be given in the Spansh style as a list of
// {"<Kind>": bodyId} entries ordered nearest first; DecodeSystem resolves
// them to indices.
package model
