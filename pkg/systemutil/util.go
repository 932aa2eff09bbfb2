package systemutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CmdRun runs name with args. env entries are appended to the process
// environment. On failure the returned error carries the command's stderr.
func CmdRun(ctx context.Context, env []string, name string, args ...string) (out string, err error) {
	if len(name) == 0 {
		return "", errors.New("No command provided.")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	out = stdout.String()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return out, fmt.Errorf("%s: %w", name, err)
		}
		return out, fmt.Errorf("%s: %w: %s", name, err, msg)
	}

	return
}
