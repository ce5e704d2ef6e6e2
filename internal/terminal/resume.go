// Package terminal builds the command used to reopen a session in Claude.
package terminal

import (
	"fmt"
	"os"
	"os/exec"
)

// EnvClaudeBin overrides the claude executable
const EnvClaudeBin = "CLAUDE_BIN"

// Binary returns the claude executable name or override
func Binary() string {
	if bin := os.Getenv(EnvClaudeBin); bin != "" {
		return bin
	}
	return "claude"
}

// ResumeCommand returns `claude --resume <id>` running in projectPath.
// The working directory is left unset when projectPath no longer exists.
func ResumeCommand(projectPath, sessionID string) (*exec.Cmd, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("resume: empty session id")
	}

	bin, err := exec.LookPath(Binary())
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}

	cmd := exec.Command(bin, "--resume", sessionID)
	if isDir(projectPath) {
		cmd.Dir = projectPath
	}
	return cmd, nil
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
