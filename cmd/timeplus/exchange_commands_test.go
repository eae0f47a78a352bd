package main

import (
	"net/url"
	"strings"
	"testing"

	"timeplus/internal/codec"
)

func TestImportExport(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRun(t, env, "import", testPage, "1:02:03 - hello, 0:30, bogus")
	requireContains(t, out, "Bookmarks: 2 (was 0)")
	requireContains(t, out, "Skipped: bogus")

	out = mustRun(t, env, "export", testPage)
	if strings.TrimSpace(out) != "00:30, 1:02:03 - hello" {
		t.Fatalf("export = %q", out)
	}
}

func TestImportFromStdinAndReplace(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRun(t, env, "add", testPage, "30", "mine")

	out, stderr, err := runCLI(t, env, strings.NewReader("0:30 - theirs\n0:45\n"), "import", testPage, "-")
	if err != nil {
		t.Fatalf("import: %v\n%s", err, stderr)
	}
	requireContains(t, out, "Bookmarks: 2 (was 1)")
	markers := listJSON(t, env)
	if markers[0].MemoText() != "mine" {
		t.Fatalf("union should keep existing memo, got %+v", markers[0])
	}

	mustRun(t, env, "import", testPage, "--replace", "5:00")
	requireTimes(t, listJSON(t, env), 300)
}

func TestShareAndOpen(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRun(t, env, "add", testPage, "30", "a, b - c")
	mustRun(t, env, "add", testPage, "3723")

	shareURL := strings.TrimSpace(mustRun(t, env, "share", testPage))
	u, err := url.Parse(shareURL)
	if err != nil {
		t.Fatalf("parse share url: %v", err)
	}
	if u.Query().Get(codec.ShareParam) == "" {
		t.Fatalf("share url %q has no %s parameter", shareURL, codec.ShareParam)
	}
	if u.Query().Get("ref") != "" {
		t.Fatalf("share url kept page query: %q", shareURL)
	}

	mustRun(t, env, "import", testPage, "--replace", "0:01")

	out := mustRun(t, env, "open", shareURL)
	requireContains(t, out, "Imported: no")
	requireContains(t, out, "https://example.com/watch/sm9001\n")
	requireTimes(t, listJSON(t, env), 1)

	out = mustRun(t, env, "open", shareURL, "--yes")
	requireContains(t, out, "Imported: yes")
	markers := listJSON(t, env)
	requireTimes(t, markers, 1, 30, 3723)
	if markers[1].MemoText() != "a, b - c" {
		t.Fatalf("memo = %q", markers[1].MemoText())
	}
}

func TestOpenMalformedShareOnlyCleans(t *testing.T) {
	env := setupCLITestEnv(t)
	out := mustRun(t, env, "open", "https://example.com/watch/sm9001?timeplus=%25%25&t=5", "--yes")
	requireContains(t, out, "Imported: no")
	requireContains(t, out, "https://example.com/watch/sm9001?t=5")
}
