package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("tf %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestVersionCmd(t *testing.T) {
	out := mustRun(t, "version")
	if !strings.Contains(out, "tf dev") {
		t.Errorf("expected output to contain 'tf dev', got: %s", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("expected output to contain 'commit: none', got: %s", out)
	}
}

func TestVersionCmdWithCustomValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.0.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	out := mustRun(t, "version")
	for _, want := range []string{"tf 1.0.0", "commit: abc123", "built: 2026-01-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestRootCmdHelp(t *testing.T) {
	out := mustRun(t, "--help")
	for _, sub := range []string{"version", "db", "serve", "workspace", "board", "column", "task", "dep", "subtask", "audit"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q, got: %s", sub, out)
		}
	}
}

func TestSubcommandHelp(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"task", "--help"}, []string{"create", "list", "show", "status", "move", "delete", "children"}},
		{[]string{"task", "create", "--help"}, []string{"--title", "--workspace", "--column", "--due", "--config"}},
		{[]string{"task", "move", "--help"}, []string{"--column", "--position"}},
		{[]string{"dep", "--help"}, []string{"add", "list", "remove", "ready"}},
		{[]string{"dep", "add", "--help"}, []string{"--blocked-by", "--type"}},
		{[]string{"column", "--help"}, []string{"add", "reorder", "delete"}},
		{[]string{"subtask", "--help"}, []string{"add", "toggle", "reorder"}},
		{[]string{"db", "--help"}, []string{"init", "migrate"}},
		{[]string{"serve", "--help"}, []string{"--port", "--migrate", "--config"}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out := mustRun(t, tt.args...)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %q in help, got: %s", w, out)
				}
			}
		})
	}
}

func TestRequiredFlags(t *testing.T) {
	if _, err := run(t, "task", "create", "--title", "x"); err == nil {
		t.Error("task create without --workspace should fail")
	}
	if _, err := run(t, "dep", "add", "2"); err == nil {
		t.Error("dep add without --blocked-by should fail")
	}
}

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"3=0", "1=2"})
	if err != nil {
		t.Fatalf("parseItems: %v", err)
	}
	if len(items) != 2 || items[0].ID != 3 || items[0].Position != 0 || items[1].ID != 1 || items[1].Position != 2 {
		t.Errorf("items = %+v", items)
	}
	for _, bad := range []string{"3", "x=1", "3=-1", "0=1", "3=a"} {
		if _, err := parseItems([]string{bad}); err == nil {
			t.Errorf("parseItems(%q) should fail", bad)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-03-05")
	if err != nil || d.Format("2006-01-02") != "2026-03-05" {
		t.Errorf("parseDate = %v, %v", d, err)
	}
	if d, err := parseDate(""); d != nil || err != nil {
		t.Errorf("empty date = %v, %v", d, err)
	}
	if _, err := parseDate("tomorrow"); err == nil {
		t.Error("expected error for invalid date")
	}
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "taskflow.yaml")
	cfg := fmt.Sprintf("database:\n  driver: sqlite\n  dsn: %s\nlog:\n  level: error\n", filepath.Join(dir, "tf.db"))
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestEndToEnd_BoardTasksAndDependencies(t *testing.T) {
	cfg := writeConfig(t)

	if out := mustRun(t, "db", "migrate", "-c", cfg); !strings.Contains(out, "Migrated 12 tables") {
		t.Fatalf("migrate output: %s", out)
	}
	if out := mustRun(t, "workspace", "create", "Acme", "-c", cfg); !strings.Contains(out, "Created workspace 1") {
		t.Fatalf("workspace output: %s", out)
	}
	if out := mustRun(t, "board", "create", "Sprint", "-w", "1", "-c", cfg); !strings.Contains(out, "with 3 columns") {
		t.Fatalf("board output: %s", out)
	}

	mustRun(t, "task", "create", "-w", "1", "--title", "Design", "--column", "1", "-c", cfg)
	mustRun(t, "task", "create", "-w", "1", "--title", "Build", "--column", "1", "-c", cfg)

	out := mustRun(t, "board", "show", "1", "-c", cfg)
	if !strings.Contains(out, "Design") || strings.Index(out, "Design") > strings.Index(out, "Build") {
		t.Errorf("board show should list Design before Build: %s", out)
	}

	mustRun(t, "dep", "add", "2", "--blocked-by", "1", "-c", cfg)
	out = mustRun(t, "dep", "list", "2", "-c", cfg)
	if !strings.Contains(out, "Blocked by:") || !strings.Contains(out, "Design") {
		t.Errorf("dep list output: %s", out)
	}
	out = mustRun(t, "dep", "list", "1", "-c", cfg)
	if !strings.Contains(out, "Blocks:") || !strings.Contains(out, "Build") {
		t.Errorf("dep list of blocker output: %s", out)
	}

	if out, err := run(t, "dep", "add", "1", "--blocked-by", "2", "-c", cfg); err == nil || !strings.Contains(out, "cycle") {
		t.Errorf("reverse edge should fail with a cycle error, got err=%v out=%s", err, out)
	}

	out = mustRun(t, "task", "move", "1", "--column", "3", "-c", cfg)
	if !strings.Contains(out, "Moved task 1 to column 3") {
		t.Errorf("move output: %s", out)
	}
	out = mustRun(t, "audit", "1", "-c", cfg)
	if !strings.Contains(out, "MOVE") || !strings.Contains(out, "CREATE") {
		t.Errorf("history output: %s", out)
	}

	if out := mustRun(t, "workspace", "invite", "1", "2", "--role", "VIEWER", "-c", cfg); !strings.Contains(out, "as VIEWER") {
		t.Errorf("invite output: %s", out)
	}
	out = mustRun(t, "workspace", "members", "1", "-c", cfg)
	if !strings.Contains(out, "OWNER") || !strings.Contains(out, "VIEWER") {
		t.Errorf("members output: %s", out)
	}
	if out := mustRun(t, "workspace", "list", "-c", cfg); !strings.Contains(out, "Acme") {
		t.Errorf("workspace list output: %s", out)
	}

	if out := mustRun(t, "label", "create", "urgent", "--workspace", "1", "-c", cfg); !strings.Contains(out, "Created label 1") {
		t.Fatalf("label create output: %s", out)
	}
	mustRun(t, "label", "attach", "2", "1", "-c", cfg)
	if out := mustRun(t, "label", "list", "--task", "2", "-c", cfg); !strings.Contains(out, "urgent") {
		t.Errorf("task labels output: %s", out)
	}
	mustRun(t, "label", "detach", "2", "1", "-c", cfg)
	if out := mustRun(t, "label", "list", "--task", "2", "-c", cfg); !strings.Contains(out, "No labels") {
		t.Errorf("task labels after detach: %s", out)
	}
	if _, err := run(t, "label", "list", "-c", cfg); err == nil {
		t.Error("label list without --workspace or --task should fail")
	}
}
