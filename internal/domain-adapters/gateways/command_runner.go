package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces/gateways"
)

// CommandRunner executes installed binaries directly, without a shell
type CommandRunner struct {
	defaultTimeout time.Duration
}

// NewCommandRunner creates a new command runner
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		defaultTimeout: 30 * time.Second,
	}
}

// Run executes req.Path with req.Args and captures its exit status and output
func (r *CommandRunner) Run(ctx context.Context, req gateways.RunRequest) *gateways.RunResult {
	startTime := time.Now()
	result := &gateways.RunResult{}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = r.defaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: The binary path is the formula's installed artifact
	cmd := exec.CommandContext(execCtx, req.Path, req.Args...)
	// Children that inherit stdout must not keep Wait blocked after a kill
	cmd.WaitDelay = 2 * time.Second
	if req.Dir != "" {
		cmd.Dir = req.Dir
	}

	env := os.Environ()
	for key, value := range req.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Error = err
		result.ExitCode = -1

		var exitErr *exec.ExitError
		//nolint:gocritic // ifElseChain: checking different error types, not suitable for switch
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			result.TimedOut = true
			result.Error = fmt.Errorf("execution timeout after %v", timeout)
		} else if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			if !exitErr.Exited() {
				result.Signal = exitErr.ProcessState.String()
			}
		}
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}
