// Package autoadd turns starred comments from an external feed into markers.
//
// A Scanner polls a Feed on an interval. Comments whose text contains the
// configured glyph are added at their displayed time minus a small offset,
// with the full comment text as memo. The enabled flag is persisted as the
// literal text "true" or "false".
package autoadd
