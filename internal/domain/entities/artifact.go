// Package entities defines core domain models and data structures.
package entities

// Artifact types produced by the fetch stage
const (
	ArtifactArchive   = "archive"
	ArtifactSource    = "source"
	ArtifactCheckout  = "checkout"
	ArtifactInstalled = "installed"
)

// Artifact represents a fetched, extracted or installed file tree
type Artifact struct {
	Name    string
	Version string
	Path    string
	Type    string
	SHA256  string // Digest of the archive bytes, empty for checkouts
}
