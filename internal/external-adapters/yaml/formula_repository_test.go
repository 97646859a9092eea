package yaml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
)

func writeFormula(t *testing.T, dir, file, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
}

func TestFormulaRepository_GetFormula_Success(t *testing.T) {
	tmpDir := t.TempDir()
	writeFormula(t, tmpDir, "lofetch.yml", lofetchYAML)

	repo := NewFormulaRepository(tmpDir, nil)
	f, err := repo.GetFormula(context.Background(), "lofetch")
	if err != nil {
		t.Fatalf("GetFormula() error = %v", err)
	}

	if f.Name != "lofetch" {
		t.Errorf("GetFormula() name = %v, want lofetch", f.Name)
	}
	if repo.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", repo.Dir(), tmpDir)
	}
}

func TestFormulaRepository_GetFormula_NotFound(t *testing.T) {
	repo := NewFormulaRepository(t.TempDir(), nil)

	for _, name := range []string{"nonexistent", "../etc/passwd", ""} {
		_, err := repo.GetFormula(context.Background(), name)
		if !errors.Is(err, entities.ErrFormulaNotFound) {
			t.Errorf("GetFormula(%q) error = %v, want ErrFormulaNotFound", name, err)
		}
	}
}

func TestFormulaRepository_GetFormula_NameMismatch(t *testing.T) {
	tmpDir := t.TempDir()
	writeFormula(t, tmpDir, "other.yml", lofetchYAML)

	_, err := NewFormulaRepository(tmpDir, nil).GetFormula(context.Background(), "other")
	if !errors.Is(err, entities.ErrInvalidFormula) {
		t.Errorf("GetFormula() error = %v, want ErrInvalidFormula", err)
	}
}

func TestFormulaRepository_ListFormulae(t *testing.T) {
	tmpDir := t.TempDir()
	writeFormula(t, tmpDir, "lofetch.yml", lofetchYAML)
	writeFormula(t, tmpDir, "alpha.yml", "name: alpha\nurl: https://example.com/alpha-0.1.0.tar.gz\n")
	writeFormula(t, tmpDir, "broken.yml", "name: [\n")
	writeFormula(t, tmpDir, "README.md", "# tap\n")
	if err := os.Mkdir(filepath.Join(tmpDir, "keys.yml"), 0750); err != nil {
		t.Fatal(err)
	}

	formulae, err := NewFormulaRepository(tmpDir, nil).ListFormulae(context.Background())
	if err != nil {
		t.Fatalf("ListFormulae() error = %v", err)
	}

	if len(formulae) != 2 {
		t.Fatalf("ListFormulae() returned %d formulae, want 2", len(formulae))
	}
	if formulae[0].Name != "alpha" || formulae[1].Name != "lofetch" {
		t.Errorf("ListFormulae() order = %s, %s", formulae[0].Name, formulae[1].Name)
	}
}

func TestFormulaRepository_ListFormulae_MissingDir(t *testing.T) {
	_, err := NewFormulaRepository(filepath.Join(t.TempDir(), "nope"), nil).ListFormulae(context.Background())
	if err == nil {
		t.Error("ListFormulae() should fail for a missing directory")
	}
}
