package preflight

import (
	"context"

	"timeplus/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to the configured backend.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if cfg.Storage.Backend == config.BackendSQLite {
		results = append(results, CheckDatabaseFile("Database file", cfg.Storage.Path))
	}

	results = append(results, CheckStorage(ctx, cfg))

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
