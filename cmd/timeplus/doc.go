// Package main hosts the timeplus CLI entrypoint and command graph.
//
// The Cobra-based command tree attaches a session to the media item named by
// a page URL, applies one operation (add, memo, import, share, loop and so
// on) and detaches again. Commands that mutate stored markers hold an
// exclusive file lock next to the state directory for their whole run so
// concurrent invocations cannot lose each other's writes.
//
// Keep this package lean: behavior belongs in internal/session and below;
// commands only parse arguments and render results.
package main
