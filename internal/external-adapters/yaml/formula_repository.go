package yaml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/zerr"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces"
)

// formulaExt is the file extension of formula descriptors
const formulaExt = ".yml"

// FormulaRepository implements repositories.FormulaRepository using YAML files
type FormulaRepository struct {
	formulaDir string
	parser     *FormulaParser
	logger     interfaces.Logger
}

// NewFormulaRepository creates a new YAML-based formula repository
func NewFormulaRepository(formulaDir string, logger interfaces.Logger) *FormulaRepository {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &FormulaRepository{
		formulaDir: formulaDir,
		parser:     NewFormulaParser(),
		logger:     logger,
	}
}

// Dir returns the directory holding the descriptors
func (r *FormulaRepository) Dir() string {
	return r.formulaDir
}

// GetFormula retrieves a formula by name
func (r *FormulaRepository) GetFormula(_ context.Context, name string) (*entities.Formula, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, zerr.With(zerr.Wrap(entities.ErrFormulaNotFound, "invalid formula name"), "name", name)
	}

	filePath := filepath.Join(r.formulaDir, name+formulaExt)
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return nil, zerr.With(zerr.Wrap(entities.ErrFormulaNotFound, "no descriptor"), "name", name)
	}

	f, err := r.parser.ParseFile(filePath)
	if err != nil {
		return nil, err
	}

	if f.Name != name {
		return nil, zerr.With(
			zerr.Wrap(entities.ErrInvalidFormula, fmt.Sprintf("descriptor declares name %q", f.Name)),
			"file", filepath.Base(filePath),
		)
	}

	return f, nil
}

// ListFormulae returns all parseable formulae sorted by name
func (r *FormulaRepository) ListFormulae(_ context.Context) ([]*entities.Formula, error) {
	entries, err := os.ReadDir(r.formulaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read formula directory: %w", err)
	}

	formulae := make([]*entities.Formula, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), formulaExt) {
			continue
		}

		f, err := r.parser.ParseFile(filepath.Join(r.formulaDir, entry.Name()))
		if err != nil {
			r.logger.Warn("skipping unparseable formula",
				interfaces.F("file", entry.Name()), interfaces.F("error", err))
			continue
		}

		formulae = append(formulae, f)
	}

	sort.Slice(formulae, func(i, j int) bool {
		return formulae[i].Name < formulae[j].Name
	})

	return formulae, nil
}
