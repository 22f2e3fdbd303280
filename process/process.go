// Package process wraps command execution. Run, Output and RunAll go through
// mageutil's shellcmd runner, which echoes the command and streams its output;
// RunTimeout runs a command with a hard deadline.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/princjef/mageutil/shellcmd"
)

var (
	ErrTimeout         = errors.New("command timed out")
	ErrInvalidArgument = errors.New("invalid argument")
)

// killGrace bounds how long Wait blocks on inherited pipes after a kill.
const killGrace = 500 * time.Millisecond

type Result struct {
	Output   []byte
	ExitCode int
	Duration time.Duration
}

func Run(command string) error {
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("%w: empty command", ErrInvalidArgument)
	}
	return shellcmd.Command(command).Run()
}

// Output runs command and returns its standard output without surrounding
// whitespace.
func Output(command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", fmt.Errorf("%w: empty command", ErrInvalidArgument)
	}
	out, err := shellcmd.Command(command).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// RunAll runs commands in order and stops at the first failure.
func RunAll(commands ...string) error {
	for _, c := range commands {
		if err := Run(c); err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
	}
	return nil
}

// RunTimeout runs name with args and blocks until it exits, ctx is done or
// timeout elapses. On timeout the process is killed and the returned error
// wraps ErrTimeout; the partial output is still returned.
func RunTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (*Result, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidArgument, timeout)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty command", ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeoutCause(ctx, timeout, ErrTimeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = killGrace

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Output:   out.Bytes(),
		ExitCode: -1,
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if errors.Is(context.Cause(ctx), ErrTimeout) {
		return res, fmt.Errorf("%s after %s: %w", name, timeout, ErrTimeout)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, fmt.Errorf("%s exited with code %d: %w", name, res.ExitCode, err)
	}
	return res, err
}
