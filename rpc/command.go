package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

var ErrNoCommand = errors.New("no command configured")

// expandCommand substitutes {name} placeholders in every argument.
func expandCommand(tmpl []string, vars map[string]string) []string {
	argv := make([]string, 0, len(tmpl))
	for _, arg := range tmpl {
		for k, v := range vars {
			arg = strings.ReplaceAll(arg, "{"+k+"}", v)
		}
		argv = append(argv, arg)
	}
	return argv
}

// startError reports a command that could not run at all, as opposed to one
// that ran and exited non-zero.
type startError struct {
	err error
}

func (e *startError) Error() string { return e.err.Error() }
func (e *startError) Unwrap() error { return e.err }

// runCommand runs argv with stdout and stderr streamed to out.
func runCommand(ctx context.Context, argv []string, out io.Writer) error {
	if len(argv) == 0 {
		return ErrNoCommand
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Start(); err != nil {
		return &startError{err: fmt.Errorf("failed to start %s: %w", argv[0], err)}
	}
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s stopped: %w", argv[0], ctx.Err())
		}
		return fmt.Errorf("%s failed: %w", argv[0], err)
	}
	return nil
}
