package commands

import (
	"context"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/subst-go/subst"
)

// Shell runs the placeholder's path as a shell command line and resolves
// to the command's stdout, verbatim — trailing newlines included, so
// `${sh:printf 1}` and `${sh:echo 1}` differ by exactly that newline.
//
// Spawning is a blocking suspension point for the whole interpolation
// call; bound it through the context if that matters.
type Shell struct {
	// Shell is the interpreter invoked with -c; defaults to "sh".
	Shell string

	// Dir is the working directory for spawned commands. Empty means the
	// calling process's directory.
	Dir string

	// Env replaces the spawned command's environment when non-nil.
	Env []string
}

var _ subst.Command = (*Shell)(nil)

// NewShell creates a Shell command using the system default interpreter.
func NewShell() *Shell {
	return &Shell{}
}

// Process runs the path as `sh -c <path>` and returns its stdout.
func (s *Shell) Process(ctx context.Context, in subst.Input) (string, error) {
	shell := s.Shell
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", in.Path)
	cmd.Dir = s.Dir
	cmd.Env = s.Env

	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrapf(err, "shell: %q", in.Path)
	}
	return string(out), nil
}
