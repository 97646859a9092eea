// Package services implements domain business logic and use cases.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces/gateways"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces/services"
)

// BinDir returns the binary directory of an install prefix
func BinDir(prefix string) string {
	return filepath.Join(prefix, "bin")
}

// binaryRecipe installs prebuilt executables and smoke-tests the main one
type binaryRecipe struct {
	formula   *entities.Formula
	installer gateways.BinaryInstaller
	runner    gateways.CommandRunner
	logger    interfaces.Logger
}

// NewBinaryRecipe creates the install/test recipe for a formula that ships prebuilt binaries
func NewBinaryRecipe(
	formula *entities.Formula,
	installer gateways.BinaryInstaller,
	runner gateways.CommandRunner,
	logger interfaces.Logger,
) services.PackageRecipe {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &binaryRecipe{
		formula:   formula,
		installer: installer,
		runner:    runner,
		logger:    logger,
	}
}

// Install copies every declared artifact from sourceDir into prefix/bin.
// All artifacts are located before anything is written, and binaries newly
// created by a failed run are removed again.
func (r *binaryRecipe) Install(ctx context.Context, sourceDir, prefix string) error {
	if err := ctx.Err(); err != nil {
		return &entities.InstallError{Formula: r.formula.Name, Err: err}
	}

	artifacts := r.artifacts()
	sources := make([]string, 0, len(artifacts))
	for _, name := range artifacts {
		src, err := locateArtifact(sourceDir, name)
		if err != nil {
			return &entities.InstallError{Formula: r.formula.Name, Artifact: name, Err: err}
		}
		sources = append(sources, src)
	}

	binDir := BinDir(prefix)
	var created []string
	for idx, src := range sources {
		dest := filepath.Join(binDir, filepath.Base(src))
		_, statErr := os.Lstat(dest)
		existed := statErr == nil

		installed, err := r.installer.InstallBinary(src, binDir)
		if err != nil {
			rollback(created)
			return &entities.InstallError{Formula: r.formula.Name, Artifact: artifacts[idx], Err: err}
		}
		if !existed {
			created = append(created, installed)
		}

		r.logger.Debug("installed artifact",
			interfaces.F("formula", r.formula.Name), interfaces.F("path", installed))
	}

	return nil
}

// Test runs the main binary with the declared arguments and expects exit status 0.
// The process runs in a scratch directory so it cannot write into the prefix by accident.
func (r *binaryRecipe) Test(ctx context.Context, prefix string) error {
	bin := filepath.Join(BinDir(prefix), filepath.Base(r.formula.MainBinary()))
	command := strings.TrimSpace(bin + " " + strings.Join(r.formula.Test.Args, " "))

	info, err := os.Stat(bin)
	if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
		return &entities.TestFailure{
			Formula:  r.formula.Name,
			Command:  command,
			ExitCode: -1,
			Err:      zerr.With(zerr.Wrap(entities.ErrNotExecutable, "locate installed binary"), "path", bin),
		}
	}

	scratch, err := os.MkdirTemp("", "tap-test-"+r.formula.Name+"-*")
	if err != nil {
		return &entities.TestFailure{Formula: r.formula.Name, Command: command, ExitCode: -1, Err: err}
	}
	defer func() {
		_ = os.RemoveAll(scratch)
	}()

	result := r.runner.Run(ctx, gateways.RunRequest{
		Path:    bin,
		Args:    r.formula.Test.Args,
		Dir:     scratch,
		Env:     map[string]string{"HOME": scratch},
		Timeout: r.formula.Test.Timeout,
	})

	if result.Stdout != "" {
		r.logger.Debug("test output",
			interfaces.F("formula", r.formula.Name), interfaces.F("stdout", strings.TrimSpace(result.Stdout)))
	}

	if result.Success {
		return nil
	}

	failure := &entities.TestFailure{
		Formula:  r.formula.Name,
		Command:  command,
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
	}
	switch {
	case result.TimedOut:
		failure.Err = zerr.Wrap(entities.ErrTestTimeout, errorText(result.Error))
	case result.Signal != "":
		failure.Err = zerr.With(zerr.Wrap(entities.ErrNonZeroExit, "smoke test terminated"), "signal", result.Signal)
	case result.ExitCode > 0:
		failure.Err = zerr.With(zerr.Wrap(entities.ErrNonZeroExit, "smoke test"), "exit_code", result.ExitCode)
	default:
		failure.Err = zerr.Wrap(entities.ErrNotExecutable, errorText(result.Error))
	}
	return failure
}

func (r *binaryRecipe) artifacts() []string {
	if len(r.formula.Install.Bin) == 0 {
		return []string{r.formula.Name}
	}
	return r.formula.Install.Bin
}

// locateArtifact resolves name inside sourceDir and requires a regular file.
// Symlinks are followed only while they stay inside sourceDir.
func locateArtifact(sourceDir, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || !filepath.IsLocal(name) {
		return "", zerr.With(zerr.Wrap(entities.ErrArtifactMissing, "artifact path escapes source tree"), "artifact", name)
	}

	src := filepath.Join(sourceDir, name)
	if _, err := os.Lstat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(entities.ErrArtifactMissing, "locate artifact"), "path", src)
		}
		return "", fmt.Errorf("failed to stat artifact: %w", err)
	}

	root, err := filepath.EvalSymlinks(sourceDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source tree: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return "", zerr.With(zerr.Wrap(entities.ErrArtifactMissing, "dangling artifact link"), "path", src)
	}
	if rel, err := filepath.Rel(root, resolved); err != nil || !filepath.IsLocal(rel) {
		return "", zerr.With(zerr.Wrap(entities.ErrArtifactMissing, "artifact link escapes source tree"), "path", src)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to stat artifact: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", zerr.With(zerr.Wrap(entities.ErrArtifactMissing, "artifact is not a regular file"), "path", src)
	}
	return src, nil
}

func rollback(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

func errorText(err error) string {
	if err == nil {
		return "process failed"
	}
	return err.Error()
}
