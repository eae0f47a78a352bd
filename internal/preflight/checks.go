package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"timeplus/internal/config"
	"timeplus/internal/kvstore"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabaseFile verifies that an existing SQLite file is writable and
// that its directory would allow creating one.
func CheckDatabaseFile(name, path string) Result {
	dirResult := CheckDirectoryAccess(name, filepath.Dir(path))
	if !dirResult.Passed {
		return dirResult
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStorage opens the configured backend and lists keys under the prefix.
// It uses a 10-second timeout and does not write.
func CheckStorage(ctx context.Context, cfg *config.Config) Result {
	name := "Storage (" + cfg.Storage.Backend + ")"
	if cfg.Storage.Backend == config.BackendMemory {
		return Result{Name: name, Passed: true, Detail: "in-memory (data is not persisted)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := kvstore.Open(checkCtx, cfg, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("open failed (%v)", err)}
	}
	defer store.Close()

	keys, err := store.Keys(checkCtx, cfg.Storage.KeyPrefix)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("query failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable, %d keys under %q", len(keys), cfg.Storage.KeyPrefix)}
}
