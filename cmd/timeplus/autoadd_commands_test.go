package main

import (
	"path/filepath"
	"testing"

	"timeplus/internal/testsupport"
)

func TestAutoAddToggle(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRun(t, env, "auto-add", testPage)
	requireContains(t, out, "Auto-add: off")

	mustRun(t, env, "auto-add", testPage, "on")
	out = mustRun(t, env, "auto-add", "https://example.com/watch/other")
	requireContains(t, out, "Auto-add: on")

	mustRun(t, env, "auto-add", testPage, "off")
	out = mustRun(t, env, "auto-add", testPage)
	requireContains(t, out, "Auto-add: off")

	if _, _, err := runCLI(t, env, nil, "auto-add", testPage, "maybe"); err == nil {
		t.Fatal("expected error for bad toggle value")
	}
}

func TestIngestStarredComments(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "comments.txt")
	testsupport.WriteLines(t, path,
		"00:10 ★ intro",
		"00:20 plain comment",
		"1:00:00 ★ hour",
		"nonsense",
	)

	out := mustRun(t, env, "ingest", testPage, path)
	requireContains(t, out, "Bookmarked 2 starred comment(s)")

	markers := listJSON(t, env)
	requireTimes(t, markers, 9, 3599)
	if markers[0].MemoText() != "★ intro" {
		t.Fatalf("memo = %q", markers[0].MemoText())
	}
}
