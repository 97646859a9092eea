package gateways

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
)

// BinaryInstaller copies prebuilt executables into a prefix bin directory
type BinaryInstaller struct{}

// NewBinaryInstaller creates a new binary installer
func NewBinaryInstaller() *BinaryInstaller {
	return &BinaryInstaller{}
}

// InstallBinary copies src into binDir under the same base name.
// The copy is staged in binDir and renamed over the destination, so readers see
// either the previous binary or the new one. Permission bits are kept and the
// owner execute bit is always set.
func (i *BinaryInstaller) InstallBinary(src, binDir string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", zerr.With(zerr.Wrap(entities.ErrArtifactMissing, "stat artifact"), "path", src)
		}
		return "", fmt.Errorf("failed to stat artifact: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", zerr.With(zerr.Wrap(entities.ErrArtifactMissing, "artifact is not a regular file"), "path", src)
	}

	if err := os.MkdirAll(binDir, 0755); err != nil {
		return "", zerr.With(zerr.Wrap(entities.ErrDestinationNotWritable, err.Error()), "dir", binDir)
	}

	dest := filepath.Join(binDir, filepath.Base(src))

	tmp, err := os.CreateTemp(binDir, "."+filepath.Base(src)+"-*")
	if err != nil {
		return "", zerr.With(zerr.Wrap(entities.ErrDestinationNotWritable, err.Error()), "dir", binDir)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	//nolint:gosec // G304: src is an artifact inside the extracted source tree
	in, err := os.Open(src)
	if err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to copy artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close staged binary: %w", err)
	}

	if err := os.Chmod(tmpPath, info.Mode().Perm()|0100); err != nil {
		return "", fmt.Errorf("failed to set binary mode: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return "", zerr.With(zerr.Wrap(entities.ErrDestinationNotWritable, err.Error()), "path", dest)
	}
	committed = true

	return dest, nil
}
