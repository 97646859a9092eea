package gateways

import (
	"context"
	"time"
)

// RunRequest describes a single process invocation
type RunRequest struct {
	Path    string
	Args    []string
	Dir     string
	Env     map[string]string
	Timeout time.Duration
}

// RunResult contains the outcome of a process invocation
type RunResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
	// Signal is set when the process was terminated by a signal, e.g. "signal: killed"
	Signal string
	Error  error
}

// CommandRunner executes installed binaries
type CommandRunner interface {
	Run(ctx context.Context, req RunRequest) *RunResult
}

// BinaryInstaller places a prebuilt executable into a bin directory
type BinaryInstaller interface {
	// InstallBinary copies src into binDir atomically and returns the installed path
	InstallBinary(src, binDir string) (string, error)
}

// InstallLocker serializes installs of the same formula
type InstallLocker interface {
	// Lock blocks until the formula lock is held or ctx expires
	Lock(ctx context.Context, formula string) (unlock func() error, err error)
}
