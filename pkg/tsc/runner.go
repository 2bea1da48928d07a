package tsc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
)

// Result is the captured output of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes a command in dir and waits for it. A non-zero exit is not
// an error; only failing to start or being cancelled is.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// ExecRunner runs real processes.
type ExecRunner struct{}

// Run starts the process and drains stdout and stderr concurrently so a
// chatty compiler cannot block on a full pipe.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	defer debug.LogEnterExit("exec " + name)()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, err
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", name, err)
	}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})
	copyErr := g.Wait()
	waitErr := cmd.Wait()

	res := Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, waitErr
	}
	if copyErr != nil {
		return res, fmt.Errorf("reading output of %s: %w", name, copyErr)
	}
	if len(res.Stderr) > 0 {
		debug.Log("%s stderr: %s", name, res.Stderr)
	}
	return res, nil
}
