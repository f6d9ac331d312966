package build

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// Runner executes external commands. Tests swap in a fake so no cargo or
// rustup binary is needed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands through os/exec, wiring the child's output to the
// current process like the rest of the CLI output.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err != nil {
		return eris.Wrapf(err, "Command %s %s failed", name, strings.Join(args, " "))
	}
	return nil
}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		return string(out), eris.Wrapf(err, "Command %s %s failed", name, strings.Join(args, " "))
	}
	return string(out), nil
}
