package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/kbukum/voxkit/logger"
)

const defaultGracePeriod = 5 * time.Second

// Run starts cmd in its own process group and waits for it. Cancelling ctx
// sends SIGTERM to the whole group and SIGKILL once the grace period is
// over. A non-zero exit is an error; the Result is returned either way
// once the process has started.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.New("process: binary is required")
	}

	var stdout, stderr bytes.Buffer
	c := command(ctx, cmd)
	c.Stdout, c.Stderr = &stdout, &stderr

	start := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}
	logger.Get("process").Debug("subprocess finished", logger.Fields(
		"command", cmd.String(),
		"exit_code", res.ExitCode,
		logger.FieldDuration, res.Duration.Milliseconds(),
	))

	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, fmt.Errorf("process: %s stopped: %w", cmd.Binary, ctx.Err())
	default:
		return res, fmt.Errorf("process: %s exited with %d: %w", cmd.Binary, res.ExitCode, err)
	}
}

// command builds the exec.Cmd for cmd, wiring cancellation to the process
// group rather than only the direct child, since tools like ffmpeg may fork.
func command(ctx context.Context, cmd Command) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // argument list built by callers
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = cmd.GracePeriod
	if c.WaitDelay <= 0 {
		c.WaitDelay = defaultGracePeriod
	}
	return c
}

// Available reports whether binary resolves through PATH.
func Available(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}
