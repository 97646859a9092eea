package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"go.trai.ch/zerr"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
)

// checksumVerifier implements SHA256 verification using pure Go
type checksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumVerifier() *checksumVerifier {
	return &checksumVerifier{}
}

// VerifyChecksum verifies a file's SHA256 checksum.
// A mismatch is reported as *entities.ChecksumError, which wraps entities.ErrChecksumMismatch.
func (v *checksumVerifier) VerifyChecksum(_ context.Context, filePath, expectedSum string) error {
	if expectedSum == "" {
		return zerr.With(zerr.Wrap(entities.ErrChecksumPending, "verify checksum"), "file", filePath)
	}

	actualSum, err := v.CalculateChecksum(filePath)
	if err != nil {
		return err
	}

	if !strings.EqualFold(actualSum, expectedSum) {
		return &entities.ChecksumError{
			File:     filePath,
			Expected: strings.ToLower(expectedSum),
			Got:      actualSum,
		}
	}

	return nil
}

// CalculateChecksum calculates the SHA256 checksum of a file
func (v *checksumVerifier) CalculateChecksum(filePath string) (string, error) {
	//nolint:gosec // G304: File path is the fetched archive
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
