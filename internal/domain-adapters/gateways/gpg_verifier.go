package gateways

import (
	"context"
	"fmt"

	"github.com/jwuxan/homebrew-lofetch/internal/external-adapters/gpg"
)

// gpgVerifier wraps the external OpenPGP adapter for formula signatures.
// Each call builds a fresh keyring so keys never leak between formulae.
type gpgVerifier struct {
	newVerifier func() *gpg.Verifier
}

// NewGPGVerifier creates a new GPG verifier gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGVerifier() *gpgVerifier {
	return &gpgVerifier{
		newVerifier: gpg.NewVerifier,
	}
}

// VerifySignature verifies a detached signature downloaded from sigURL with the key at keyPath
func (g *gpgVerifier) VerifySignature(ctx context.Context, filePath, sigURL, keyPath string) error {
	verifier := g.newVerifier()
	if err := verifier.ImportKeyFromFile(keyPath); err != nil {
		return fmt.Errorf("failed to import signing key: %w", err)
	}

	if err := verifier.VerifySignature(ctx, filePath, sigURL); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}
