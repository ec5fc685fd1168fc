package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/derange/pkg/derange"
	"github.com/matzehuels/derange/pkg/errors"
)

// isolate points config and cache lookups at fresh temp directories.
func isolate(t *testing.T) (configHome, cacheHome string) {
	t.Helper()
	configHome, cacheHome = t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	return configHome, cacheHome
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCLI(t, New(io.Discard, LogInfo), args...)
}

// executeCLI runs args against an existing CLI so tests can inspect its
// state afterwards.
func executeCLI(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.Out = &out

	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestNthCommand(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"first of four", []string{"nth", "4", "0"}, []string{"1 0 3 2"}},
		{"last of four", []string{"nth", "4", "8"}, []string{"3 2 1 0"}},
		{"several ranks", []string{"nth", "3", "0", "1", "2"}, []string{"1 2 0", "2 0 1", "1 2 0"}},
		{"wraps past total", []string{"nth", "4", "9"}, []string{"1 0 3 2"}},
		{"huge rank", []string{"nth", "4", "900000000000000000000000000009"}, []string{"1 0 3 2"}},
		{"two items", []string{"nth", "2", "0"}, []string{"1 0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("execute(%v) error: %v", tt.args, err)
			}
			got := lines(out)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("execute(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestNthCommandJSON(t *testing.T) {
	isolate(t)

	out, err := execute(t, "nth", "--json", "4", "0", "8")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}

	var got []nthResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[1].N != 4 || got[1].Rank != "8" {
		t.Errorf("result = %+v, want n=4 rank=8", got[1])
	}
	if formatSeq(got[0].Derangement) != "1 0 3 2" || formatSeq(got[1].Derangement) != "3 2 1 0" {
		t.Errorf("derangements = %v, %v", got[0].Derangement, got[1].Derangement)
	}
}

func TestNthCommandErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"zero items", []string{"nth", "0", "0"}, errors.ErrCodeInvalidInput},
		{"one item", []string{"nth", "1", "0"}, errors.ErrCodeUnsatisfiable},
		{"non-numeric n", []string{"nth", "four", "0"}, errors.ErrCodeInvalidInput},
		{"negative rank", []string{"nth", "4", "--", "-1"}, errors.ErrCodeInvalidRank},
		{"non-numeric rank", []string{"nth", "4", "abc"}, errors.ErrCodeInvalidRank},
		{"above default max", []string{"nth", "17", "0"}, errors.ErrCodeOverflow},
		{"above max-n flag", []string{"nth", "--max-n", "5", "6", "0"}, errors.ErrCodeOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("execute(%v) error = %v, want code %s", tt.args, err, tt.code)
			}
		})
	}
}

func TestRankCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "rank", "3", "2", "1", "0")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if strings.TrimSpace(out) != "8" {
		t.Errorf("rank = %q, want 8", out)
	}

	out, err = execute(t, "rank", "4", "3", "1", "2", "0")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if strings.TrimSpace(out) != "43" {
		t.Errorf("rank = %q, want 43", out)
	}
}

func TestRankCommandRejectsFixedPoint(t *testing.T) {
	isolate(t)

	_, err := execute(t, "rank", "0", "2", "1")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestCountCommand(t *testing.T) {
	isolate(t)

	for _, n := range []string{"0", "1", "4", "20", "30"} {
		out, err := execute(t, "count", n)
		if err != nil {
			t.Fatalf("count %s error: %v", n, err)
		}
		k, _ := parseN(n)
		want, _ := derange.SubfactorialBig(k)
		if strings.TrimSpace(out) != want.String() {
			t.Errorf("count %s = %q, want %s", n, out, want)
		}
	}
}

func TestListCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "list", "4")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	want := []string{
		"1 0 3 2", "1 2 3 0", "1 3 0 2",
		"2 0 3 1", "2 3 0 1", "2 3 1 0",
		"3 0 1 2", "3 2 0 1", "3 2 1 0",
	}
	if got := lines(out); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("list 4 = %q, want %q", got, want)
	}
}

func TestListCommandWindow(t *testing.T) {
	isolate(t)

	out, err := execute(t, "list", "4", "--start", "7", "--limit", "5")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if got := lines(out); len(got) != 2 || got[0] != "3 2 0 1" {
		t.Errorf("list window = %q", got)
	}

	out, err = execute(t, "list", "5", "--limit", "3")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if got := lines(out); len(got) != 3 {
		t.Errorf("list --limit 3 printed %d lines", len(got))
	}

	_, err = execute(t, "list", "4", "--start", "9")
	if !errors.Is(err, errors.ErrCodeInvalidRank) {
		t.Errorf("error = %v, want INVALID_RANK", err)
	}
}

func TestVerifyCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "verify", "2", "3", "4", "5", "6", "7")
	if err != nil {
		t.Fatalf("verify error: %v\n%s", err, out)
	}
	if got := strings.Count(out, "verified"); got != 6 {
		t.Errorf("verified %d item counts, want 6:\n%s", got, out)
	}
}

func TestVerifyCommandSkipsLargeTables(t *testing.T) {
	isolate(t)

	c := New(io.Discard, LogInfo)
	out, err := executeCLI(t, c, "verify", "4", "8", "--max", "100")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if !strings.Contains(out, "n=8: skipped") {
		t.Errorf("expected skip notice, got:\n%s", out)
	}
	if got := c.registry.Loaded(); got != 1 {
		t.Errorf("registry holds %d tables, want only the verified n=4", got)
	}
}

func TestVerifyTable(t *testing.T) {
	for n := 2; n <= 8; n++ {
		tbl, err := derange.NewTable(n)
		if err != nil {
			t.Fatalf("NewTable(%d) error: %v", n, err)
		}
		problems, err := verifyTable(context.Background(), tbl)
		if err != nil {
			t.Fatalf("verifyTable(%d) error: %v", n, err)
		}
		if len(problems) > 0 {
			t.Errorf("verifyTable(%d) problems: %v", n, problems)
		}
	}
}

func TestVerifyTableCancelled(t *testing.T) {
	tbl, err := derange.NewTable(6)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := verifyTable(ctx, tbl); err == nil {
		t.Error("verifyTable should stop on a cancelled context")
	}
}

func TestCacheCommands(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "tables")

	out, err := execute(t, "cache", "path", "--cache-dir", dir)
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}

	if _, err := execute(t, "nth", "--cache-dir", dir, "6", "0"); err != nil {
		t.Fatalf("nth error: %v", err)
	}
	// A second run is served from the persisted table.
	out, err = execute(t, "nth", "--cache-dir", dir, "6", "0")
	if err != nil {
		t.Fatalf("nth error: %v", err)
	}
	if strings.TrimSpace(out) != "1 0 3 2 5 4" {
		t.Errorf("nth 6 0 = %q", out)
	}

	out, err = execute(t, "cache", "clear", "--cache-dir", dir)
	if err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("cache clear output = %q", out)
	}
}

func TestNoCacheLeavesDiskUntouched(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "tables")

	if _, err := execute(t, "nth", "--no-cache", "--cache-dir", dir, "5", "3"); err != nil {
		t.Fatalf("nth error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("cache dir %s should not exist with --no-cache", dir)
	}
}

func TestConfigFileApplies(t *testing.T) {
	configHome, _ := isolate(t)
	writeConfig(t, filepath.Join(configHome, appName, "config.toml"), "max_n = 5\nno_cache = true\n")

	_, err := execute(t, "nth", "6", "0")
	if !errors.Is(err, errors.ErrCodeOverflow) {
		t.Errorf("error = %v, want OVERFLOW from max_n = 5", err)
	}

	// Flags take precedence over the file.
	out, err := execute(t, "nth", "--max-n", "6", "6", "0")
	if err != nil {
		t.Fatalf("nth with --max-n error: %v", err)
	}
	if strings.TrimSpace(out) != "1 0 3 2 5 4" {
		t.Errorf("nth 6 0 = %q", out)
	}
}

func TestExplicitConfigMissing(t *testing.T) {
	isolate(t)

	_, err := execute(t, "count", "--config", filepath.Join(t.TempDir(), "nope.toml"), "3")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the binary name")
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCacheNamespacesAreSeparate(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "tables")

	for _, ns := range []string{"alpha", "beta", "alpha"} {
		if _, err := execute(t, "nth", "--cache-dir", dir, "--cache-namespace", ns, "6", "0"); err != nil {
			t.Fatalf("nth in namespace %s error: %v", ns, err)
		}
	}
	if _, err := execute(t, "nth", "--cache-dir", dir, "6", "0"); err != nil {
		t.Fatalf("nth without namespace error: %v", err)
	}

	out, err := execute(t, "cache", "clear", "--cache-dir", dir)
	if err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if !strings.Contains(out, "Cleared 3 cached entries") {
		t.Errorf("want one entry per namespace plus the default, got %q", out)
	}
}
