package repository

import (
	"context"

	"github.com/jasonalt/ghrelease/pkg/systemutil"
)

// CommandRunner runs an external program.
type CommandRunner interface {
	Run(ctx context.Context, env []string, name string, args ...string) (string, error)
}

// ShellRunner executes commands on the host.
type ShellRunner struct{}

func (runner ShellRunner) Run(ctx context.Context, env []string, name string, args ...string) (string, error) {
	return systemutil.CmdRun(ctx, env, name, args...)
}
