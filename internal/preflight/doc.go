// Package preflight provides readiness checks for the storage timeplus
// depends on.
//
// The CLI "timeplus config validate" command runs RunAll and prints each
// Result: state directory access, SQLite file permissions, and a read-only
// probe of the configured backend.
package preflight
