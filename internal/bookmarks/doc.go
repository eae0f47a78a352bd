// Package bookmarks owns the ordered marker list for one media item.
//
// A Store keeps markers sorted by time with unique times and writes the full
// list through to a kvstore key after every mutation. Persistence failures
// leave the in-memory list untouched. Relocation and change hooks let the
// session keep the repeat controller in step with the list; hooks run
// synchronously while the store lock is held, so they must not call back
// into the Store.
package bookmarks
