// Package gpg provides detached OpenPGP signature verification for formula archives.
package gpg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const armoredSignaturePrefix = "-----BEGIN PGP SIGNATURE-----"

// maxSignatureBytes bounds downloaded signatures; real ones are well under 1KB
const maxSignatureBytes = 10 * 1024

// Verifier checks detached signatures with ProtonMail's go-crypto,
// the maintained fork of golang.org/x/crypto/openpgp
type Verifier struct {
	keyring    openpgp.EntityList
	httpClient *http.Client
}

// NewVerifier creates a verifier with an empty keyring
func NewVerifier() *Verifier {
	return &Verifier{
		keyring: make(openpgp.EntityList, 0),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ImportKeyFromFile adds the keys in an armored or binary key file to the keyring
func (v *Verifier) ImportKeyFromFile(keyPath string) error {
	//nolint:gosec // G304: keyPath comes from the formula descriptor
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to open key file: %w", err)
	}

	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
	}

	if len(entities) == 0 {
		return fmt.Errorf("no keys found in %s", keyPath)
	}

	v.keyring = append(v.keyring, entities...)
	return nil
}

// VerifySignature downloads the detached signature at sigURL and checks filePath against it
func (v *Verifier) VerifySignature(ctx context.Context, filePath, sigURL string) error {
	if len(v.keyring) == 0 {
		return fmt.Errorf("no keys imported, call ImportKeyFromFile first")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sigURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create signature request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download signature: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("signature download failed with status %d", resp.StatusCode)
	}

	sigData, err := io.ReadAll(io.LimitReader(resp.Body, maxSignatureBytes))
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}

	return v.verify(filePath, sigData)
}

func (v *Verifier) verify(filePath string, sigData []byte) error {
	if len(sigData) < 10 {
		return fmt.Errorf("signature too small to be a valid OpenPGP signature")
	}

	//nolint:gosec // G304: filePath is the fetched archive
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	if bytes.HasPrefix(bytes.TrimSpace(sigData), []byte(armoredSignaturePrefix)) {
		_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, f, bytes.NewReader(sigData), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(v.keyring, f, bytes.NewReader(sigData), nil)
	}
	if err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}

	return nil
}
