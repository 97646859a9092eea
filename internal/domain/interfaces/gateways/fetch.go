// Package gateways defines interfaces for external service adapters.
package gateways

import "context"

// FetchGateway retrieves formula sources
type FetchGateway interface {
	// Download writes the body of url to dest
	Download(ctx context.Context, url, dest string) error

	// Extract unpacks a tar.gz archive into destDir and returns the source root,
	// descending into a single top-level directory when the archive has one
	Extract(ctx context.Context, archivePath, destDir string) (string, error)

	// Clone checks out branch of a git repository into dest
	Clone(ctx context.Context, url, branch, dest string) error
}

// CacheFinder locates cached downloads of a formula
type CacheFinder interface {
	// FindCached returns the archives and extraction directories cached for formula
	FindCached(cacheDir, formula string) ([]string, error)
}
