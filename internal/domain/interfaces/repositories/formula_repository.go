// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
)

// FormulaRepository defines the interface for accessing formula descriptors
type FormulaRepository interface {
	// GetFormula retrieves a formula by name
	GetFormula(ctx context.Context, name string) (*entities.Formula, error)

	// ListFormulae returns all available formulae
	ListFormulae(ctx context.Context) ([]*entities.Formula, error)

	// Dir returns the directory descriptors are loaded from
	Dir() string
}
