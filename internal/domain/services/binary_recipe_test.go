package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces/gateways"
)

// copyInstaller copies src into binDir, optionally failing for one file name
type copyInstaller struct {
	failOn string
	calls  []string
}

func (c *copyInstaller) InstallBinary(src, binDir string) (string, error) {
	c.calls = append(c.calls, filepath.Base(src))
	if filepath.Base(src) == c.failOn {
		return "", entities.ErrDestinationNotWritable
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(binDir, 0750); err != nil {
		return "", err
	}
	dest := filepath.Join(binDir, filepath.Base(src))
	return dest, os.WriteFile(dest, data, 0700)
}

// stubRunner records the last request and returns a canned result
type stubRunner struct {
	result *gateways.RunResult
	last   gateways.RunRequest
}

func (s *stubRunner) Run(_ context.Context, req gateways.RunRequest) *gateways.RunResult {
	s.last = req
	return s.result
}

func sourceTree(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\necho "+name+"\n"), 0755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestBinaryRecipe_Install(t *testing.T) {
	src := sourceTree(t, "lofetch", "README.md")
	prefix := t.TempDir()
	installer := &copyInstaller{}

	recipe := NewBinaryRecipe(validFormula(), installer, &stubRunner{}, nil)

	if err := recipe.Install(context.Background(), src, prefix); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(prefix, "bin", "lofetch")); err != nil {
		t.Errorf("installed binary missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(prefix, "bin", "README.md")); !os.IsNotExist(err) {
		t.Error("undeclared file should not be installed")
	}
}

func TestBinaryRecipe_Install_MissingArtifact(t *testing.T) {
	src := sourceTree(t, "README.md")
	prefix := t.TempDir()
	installer := &copyInstaller{}

	recipe := NewBinaryRecipe(validFormula(), installer, &stubRunner{}, nil)
	err := recipe.Install(context.Background(), src, prefix)

	var installErr *entities.InstallError
	if !errors.As(err, &installErr) {
		t.Fatalf("expected *InstallError, got %v", err)
	}
	if installErr.Artifact != "lofetch" {
		t.Errorf("Artifact = %q, want lofetch", installErr.Artifact)
	}
	if !errors.Is(err, entities.ErrArtifactMissing) {
		t.Errorf("expected ErrArtifactMissing, got %v", err)
	}
	if len(installer.calls) != 0 {
		t.Errorf("installer should not be called, got %v", installer.calls)
	}

	entries, _ := os.ReadDir(prefix)
	if len(entries) != 0 {
		t.Errorf("prefix should be untouched, found %d entries", len(entries))
	}
}

func TestBinaryRecipe_Install_RollsBackOnFailure(t *testing.T) {
	src := sourceTree(t, "lofetch", "lofetch-helper")
	prefix := t.TempDir()
	installer := &copyInstaller{failOn: "lofetch-helper"}

	f := validFormula()
	f.Install.Bin = []string{"lofetch", "lofetch-helper"}

	err := NewBinaryRecipe(f, installer, &stubRunner{}, nil).Install(context.Background(), src, prefix)
	if !errors.Is(err, entities.ErrDestinationNotWritable) {
		t.Fatalf("expected ErrDestinationNotWritable, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(prefix, "bin", "lofetch")); !os.IsNotExist(err) {
		t.Error("binary created by the failed install should be removed")
	}
}

func TestBinaryRecipe_Install_KeepsPreviousBinaryOnFailure(t *testing.T) {
	src := sourceTree(t, "lofetch", "lofetch-helper")
	prefix := t.TempDir()
	binDir := filepath.Join(prefix, "bin")
	if err := os.MkdirAll(binDir, 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "lofetch"), []byte("old"), 0700); err != nil {
		t.Fatal(err)
	}

	f := validFormula()
	f.Install.Bin = []string{"lofetch", "lofetch-helper"}

	err := NewBinaryRecipe(f, &copyInstaller{failOn: "lofetch-helper"}, &stubRunner{}, nil).
		Install(context.Background(), src, prefix)
	if err == nil {
		t.Fatal("expected error")
	}

	if _, err := os.Stat(filepath.Join(binDir, "lofetch")); err != nil {
		t.Errorf("pre-existing binary should survive rollback: %v", err)
	}
}

func TestBinaryRecipe_Install_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewBinaryRecipe(validFormula(), &copyInstaller{}, &stubRunner{}, nil).
		Install(ctx, sourceTree(t, "lofetch"), t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBinaryRecipe_Install_SymlinkArtifact(t *testing.T) {
	hostFile := filepath.Join(t.TempDir(), "host-secret")
	if err := os.WriteFile(hostFile, []byte("HOST FILE CONTENT"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		target  func(src string) string
		wantErr bool
	}{
		{"absolute link out of tree", func(string) string { return hostFile }, true},
		{"relative link out of tree", func(src string) string {
			rel, err := filepath.Rel(src, hostFile)
			if err != nil {
				t.Fatal(err)
			}
			return rel
		}, true},
		{"link inside tree", func(string) string { return "lofetch-real" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := sourceTree(t, "lofetch-real")
			if err := os.Symlink(tt.target(src), filepath.Join(src, "lofetch")); err != nil {
				t.Fatal(err)
			}
			prefix := t.TempDir()
			installer := &copyInstaller{}

			err := NewBinaryRecipe(validFormula(), installer, &stubRunner{}, nil).Install(context.Background(), src, prefix)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Install() error = %v", err)
				}
				return
			}
			if !errors.Is(err, entities.ErrArtifactMissing) {
				t.Fatalf("expected ErrArtifactMissing, got %v", err)
			}
			if len(installer.calls) != 0 {
				t.Errorf("installer should not be called, got %v", installer.calls)
			}
			if _, statErr := os.Stat(filepath.Join(prefix, "bin", "lofetch")); !os.IsNotExist(statErr) {
				t.Error("host file was installed")
			}
		})
	}
}

func installedPrefix(t *testing.T, mode os.FileMode) string {
	t.Helper()
	prefix := t.TempDir()
	binDir := filepath.Join(prefix, "bin")
	if err := os.MkdirAll(binDir, 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "lofetch"), []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatal(err)
	}
	return prefix
}

func TestBinaryRecipe_Test(t *testing.T) {
	tests := []struct {
		name     string
		result   *gateways.RunResult
		wantErr  error
		wantCode int
	}{
		{
			name:   "passes on exit zero",
			result: &gateways.RunResult{Success: true, Stdout: "lofetch 2.0.0\n"},
		},
		{
			name:     "non-zero exit fails regardless of stdout",
			result:   &gateways.RunResult{ExitCode: 3, Stdout: "lofetch 2.0.0\n", Error: errors.New("exit status 3")},
			wantErr:  entities.ErrNonZeroExit,
			wantCode: 3,
		},
		{
			name:     "timeout",
			result:   &gateways.RunResult{ExitCode: -1, TimedOut: true, Error: errors.New("timed out after 30s")},
			wantErr:  entities.ErrTestTimeout,
			wantCode: -1,
		},
		{
			name:     "killed by signal",
			result:   &gateways.RunResult{ExitCode: -1, Signal: "signal: killed", Error: errors.New("signal: killed")},
			wantErr:  entities.ErrNonZeroExit,
			wantCode: -1,
		},
		{
			name:     "cannot start",
			result:   &gateways.RunResult{ExitCode: -1, Error: errors.New("exec format error")},
			wantErr:  entities.ErrNotExecutable,
			wantCode: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix := installedPrefix(t, 0755)
			runner := &stubRunner{result: tt.result}

			err := NewBinaryRecipe(validFormula(), &copyInstaller{}, runner, nil).Test(context.Background(), prefix)

			if runner.last.Path != filepath.Join(prefix, "bin", "lofetch") {
				t.Errorf("ran %q, want installed binary", runner.last.Path)
			}
			if len(runner.last.Args) != 1 || runner.last.Args[0] != "--version" {
				t.Errorf("Args = %v, want [--version]", runner.last.Args)
			}
			if runner.last.Timeout != 30*time.Second {
				t.Errorf("Timeout = %v, want 30s", runner.last.Timeout)
			}
			if runner.last.Dir == "" || strings.HasPrefix(runner.last.Dir, prefix) {
				t.Errorf("test should run in a scratch dir, got %q", runner.last.Dir)
			}

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Test() error = %v", err)
				}
				return
			}

			var failure *entities.TestFailure
			if !errors.As(err, &failure) {
				t.Fatalf("expected *TestFailure, got %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if failure.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", failure.ExitCode, tt.wantCode)
			}
		})
	}
}

func TestBinaryRecipe_Test_NotInstalled(t *testing.T) {
	runner := &stubRunner{result: &gateways.RunResult{Success: true}}

	err := NewBinaryRecipe(validFormula(), &copyInstaller{}, runner, nil).Test(context.Background(), t.TempDir())

	if !errors.Is(err, entities.ErrNotExecutable) {
		t.Errorf("expected ErrNotExecutable, got %v", err)
	}
	if runner.last.Path != "" {
		t.Error("runner should not be invoked for a missing binary")
	}
}

func TestBinaryRecipe_Test_NotExecutable(t *testing.T) {
	prefix := installedPrefix(t, 0644)
	runner := &stubRunner{result: &gateways.RunResult{Success: true}}

	err := NewBinaryRecipe(validFormula(), &copyInstaller{}, runner, nil).Test(context.Background(), prefix)

	if !errors.Is(err, entities.ErrNotExecutable) {
		t.Errorf("expected ErrNotExecutable, got %v", err)
	}
}
