// Package services defines interfaces for domain service contracts.
package services

import "context"

// PackageRecipe is the install/test contract of a formula
type PackageRecipe interface {
	// Install populates prefix from an extracted source tree.
	// Re-running it on the same tree yields the same installed state.
	Install(ctx context.Context, sourceDir, prefix string) error

	// Test exercises an already-installed prefix without modifying it
	Test(ctx context.Context, prefix string) error
}
