package gateways

import (
	"context"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces/gateways"
)

// compositeVerificationGateway implements VerificationGateway by composing
// the checksum and signature verifiers
type compositeVerificationGateway struct {
	checksumVerifier *checksumVerifier
	gpgVerifier      *gpgVerifier
}

// NewVerificationGateway creates a verification gateway with default dependencies
func NewVerificationGateway() gateways.VerificationGateway {
	return &compositeVerificationGateway{
		checksumVerifier: NewChecksumVerifier(),
		gpgVerifier:      NewGPGVerifier(),
	}
}

// NewVerificationGatewayWithDeps creates a verification gateway with custom dependencies
func NewVerificationGatewayWithDeps(checksum *checksumVerifier, gpg *gpgVerifier) gateways.VerificationGateway {
	return &compositeVerificationGateway{
		checksumVerifier: checksum,
		gpgVerifier:      gpg,
	}
}

// VerifyChecksum verifies a file's SHA256 checksum
func (c *compositeVerificationGateway) VerifyChecksum(ctx context.Context, filePath, expectedSum string) error {
	return c.checksumVerifier.VerifyChecksum(ctx, filePath, expectedSum)
}

// CalculateChecksum returns a file's SHA256 checksum
func (c *compositeVerificationGateway) CalculateChecksum(filePath string) (string, error) {
	return c.checksumVerifier.CalculateChecksum(filePath)
}

// VerifySignature verifies a detached OpenPGP signature
func (c *compositeVerificationGateway) VerifySignature(ctx context.Context, filePath, sigURL, keyPath string) error {
	return c.gpgVerifier.VerifySignature(ctx, filePath, sigURL, keyPath)
}
