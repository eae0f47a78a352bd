package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteLines replaces path with lines joined by newlines. The write goes
// through a rename so concurrent readers never see a partial file.
func WriteLines(t testing.TB, path string, lines ...string) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	tmp, err := os.CreateTemp(dir, ".lines-*")
	if err != nil {
		t.Fatalf("create temp for %s: %v", path, err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		t.Fatalf("write %s: %v", path, err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatalf("close %s: %v", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		t.Fatalf("rename %s: %v", path, err)
	}
}
