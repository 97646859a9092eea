package entities

import (
	"fmt"

	"go.trai.ch/zerr"
)

var (
	// ErrFormulaNotFound is returned when no descriptor exists for a formula name.
	ErrFormulaNotFound = zerr.New("formula not found")

	// ErrInvalidFormula is returned when a descriptor cannot be parsed or fails audit.
	ErrInvalidFormula = zerr.New("invalid formula")

	// ErrArtifactMissing is returned when the extracted tree lacks a declared artifact.
	ErrArtifactMissing = zerr.New("artifact missing from source tree")

	// ErrDestinationNotWritable is returned when the prefix bin directory cannot be written.
	ErrDestinationNotWritable = zerr.New("destination not writable")

	// ErrChecksumMismatch is returned when archive bytes do not match the declared SHA-256.
	ErrChecksumMismatch = zerr.New("checksum mismatch")

	// ErrChecksumPending is returned under the strict policy when the checksum is a placeholder.
	ErrChecksumPending = zerr.New("checksum pending: formula has no sha256 yet")

	// ErrNoHead is returned when a head install is requested for a formula without a head.
	ErrNoHead = zerr.New("formula has no head")

	// ErrNonZeroExit is returned when the smoke-tested binary exits with a non-zero status.
	ErrNonZeroExit = zerr.New("process exited non-zero")

	// ErrNotExecutable is returned when the installed binary is absent or cannot be executed.
	ErrNotExecutable = zerr.New("binary missing or not executable")

	// ErrTestTimeout is returned when the smoke test exceeds its time bound.
	ErrTestTimeout = zerr.New("test timed out")

	// ErrInstallLocked is returned when another process holds the formula's install lock.
	ErrInstallLocked = zerr.New("another install of this formula is in progress")
)

// Stage names a step of the formula lifecycle
type Stage string

// Lifecycle stages, in execution order
const (
	StageFetch   Stage = "fetch"
	StageVerify  Stage = "verify"
	StageExtract Stage = "extract"
	StageInstall Stage = "install"
	StageTest    Stage = "test"
)

// StageError reports which lifecycle stage failed for a formula
type StageError struct {
	Stage   Stage
	Formula string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Formula, e.Stage, e.Err)
}

// Unwrap returns the underlying stage failure.
func (e *StageError) Unwrap() error { return e.Err }

// InstallError is raised by the install procedure
type InstallError struct {
	Formula  string
	Artifact string
	Err      error
}

func (e *InstallError) Error() string {
	if e.Artifact == "" {
		return fmt.Sprintf("install %s: %v", e.Formula, e.Err)
	}
	return fmt.Sprintf("install %s (%s): %v", e.Formula, e.Artifact, e.Err)
}

// Unwrap returns the cause so callers can match sentinels with errors.Is.
func (e *InstallError) Unwrap() error { return e.Err }

// TestFailure is raised by the smoke test procedure
type TestFailure struct {
	Formula  string
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *TestFailure) Error() string {
	return fmt.Sprintf("test %s: %s (exit %d): %v", e.Formula, e.Command, e.ExitCode, e.Err)
}

// Unwrap returns the cause so callers can match sentinels with errors.Is.
func (e *TestFailure) Unwrap() error { return e.Err }

// ChecksumError describes a SHA-256 mismatch between declared and actual archive bytes.
// It wraps ErrChecksumMismatch.
type ChecksumError struct {
	File     string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s\nExpected: %s\nGot:      %s", e.File, e.Expected, e.Got)
}

// Unwrap returns ErrChecksumMismatch.
func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }
