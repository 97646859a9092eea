package gateways

import "context"

// VerificationGateway defines integrity checks run on a fetched archive
type VerificationGateway interface {
	// VerifyChecksum compares the SHA256 of filePath against expectedSum
	VerifyChecksum(ctx context.Context, filePath, expectedSum string) error

	// CalculateChecksum returns the lowercase hex SHA256 of filePath
	CalculateChecksum(filePath string) (string, error)

	// VerifySignature checks a detached OpenPGP signature fetched from sigURL
	// against the armored public key at keyPath
	VerifySignature(ctx context.Context, filePath, sigURL, keyPath string) error
}
