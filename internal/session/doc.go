// Package session binds one media item's bookmark store, repeat controller
// and auto-add scanner together.
//
// A Session is created by Manager.Attach for a page URL and lives until it is
// detached or the manager attaches a different media item. All mutators fail
// with ErrDetached once the session has been closed; persisted markers remain
// in the key-value store.
package session
