package terminal

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeClaude puts an executable named claude on PATH
func fakeClaude(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "claude")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)
	t.Setenv(EnvClaudeBin, "")
	return bin
}

func TestResumeCommand(t *testing.T) {
	bin := fakeClaude(t)
	project := t.TempDir()

	cmd, err := ResumeCommand(project, "uuid-001")
	if err != nil {
		t.Fatalf("ResumeCommand() error = %v", err)
	}
	if cmd.Path != bin {
		t.Errorf("Path = %q, want %q", cmd.Path, bin)
	}
	want := []string{bin, "--resume", "uuid-001"}
	if len(cmd.Args) != len(want) {
		t.Fatalf("Args = %v, want %v", cmd.Args, want)
	}
	for i := range want {
		if cmd.Args[i] != want[i] {
			t.Errorf("Args[%d] = %q, want %q", i, cmd.Args[i], want[i])
		}
	}
	if cmd.Dir != project {
		t.Errorf("Dir = %q, want %q", cmd.Dir, project)
	}
}

func TestResumeCommandMissingProjectDir(t *testing.T) {
	fakeClaude(t)

	cmd, err := ResumeCommand("/does/not/exist", "uuid-001")
	if err != nil {
		t.Fatalf("ResumeCommand() error = %v", err)
	}
	if cmd.Dir != "" {
		t.Errorf("Dir = %q, want empty", cmd.Dir)
	}
}

func TestResumeCommandErrors(t *testing.T) {
	fakeClaude(t)
	if _, err := ResumeCommand("", ""); err == nil {
		t.Error("expected error for empty session id")
	}

	t.Setenv("PATH", t.TempDir())
	if _, err := ResumeCommand("", "uuid-001"); err == nil {
		t.Error("expected error when claude is not installed")
	}
}

func TestBinaryOverride(t *testing.T) {
	t.Setenv(EnvClaudeBin, "")
	if got := Binary(); got != "claude" {
		t.Errorf("Binary() = %q, want claude", got)
	}
	t.Setenv(EnvClaudeBin, "/opt/claude/bin/claude")
	if got := Binary(); got != "/opt/claude/bin/claude" {
		t.Errorf("Binary() = %q, want override", got)
	}
}
