package entities

import "time"

// HeadVersion is the version reported for installs built from the head branch
const HeadVersion = "HEAD"

// Formula represents a package formula descriptor loaded from YAML
type Formula struct {
	Name        string
	Description string
	Homepage    string
	URL         string
	SHA256      string // Empty until the release archive is published
	License     string
	Version     string // Derived from the URL tag when not declared
	Head        *FormulaHead
	Signature   *FormulaSignature
	Install     InstallStep
	Test        TestStep
}

// FormulaHead points at a development branch used for head installs
type FormulaHead struct {
	URL    string
	Branch string
}

// FormulaSignature describes a detached OpenPGP signature for the source archive
type FormulaSignature struct {
	URL string
	Key string // Armored public key path, relative to the formula directory
}

// InstallStep lists the artifacts copied into the prefix bin directory
type InstallStep struct {
	Bin []string
}

// TestStep configures the post-install smoke test
type TestStep struct {
	Args    []string
	Timeout time.Duration
}

// ChecksumPending reports whether the checksum is still the placeholder value
func (f *Formula) ChecksumPending() bool {
	return f.SHA256 == ""
}

// HasHead reports whether the formula declares a development branch
func (f *Formula) HasHead() bool {
	return f.Head != nil && f.Head.URL != ""
}

// MainBinary returns the artifact exercised by the smoke test
func (f *Formula) MainBinary() string {
	if len(f.Install.Bin) == 0 {
		return f.Name
	}
	return f.Install.Bin[0]
}
