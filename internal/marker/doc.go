// Package marker defines the bookmark value type shared by the store, the
// repeat controller, and the codecs.
//
// A Marker pairs a non-negative whole-second offset with an optional memo. A
// nil memo means the marker was never annotated; a pointer to "" means the
// annotation was explicitly cleared. The list helpers in this package keep
// collections sorted by time with unique times, and Union is the one merge
// algorithm every import path goes through.
package marker
