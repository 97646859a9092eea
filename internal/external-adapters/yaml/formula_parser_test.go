package yaml

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
)

const lofetchYAML = `name: lofetch
desc: Cross-platform system information display tool (neofetch-like)
homepage: https://github.com/jwuxan/lofetch
url: https://github.com/jwuxan/lofetch/archive/refs/tags/v2.0.0.tar.gz
sha256: ""
license: MIT
head:
  url: https://github.com/jwuxan/lofetch.git
  branch: main
install:
  bin: [lofetch]
test:
  args: [--version]
`

func TestFormulaParser_Parse(t *testing.T) {
	f, err := NewFormulaParser().Parse([]byte(lofetchYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if f.Name != "lofetch" {
		t.Errorf("Name = %q, want lofetch", f.Name)
	}
	if f.Version != "v2.0.0" {
		t.Errorf("Version = %q, want v2.0.0 derived from url", f.Version)
	}
	if !f.ChecksumPending() {
		t.Error("empty sha256 should be pending")
	}
	if f.License != "MIT" {
		t.Errorf("License = %q, want MIT", f.License)
	}
	if !f.HasHead() || f.Head.Branch != "main" {
		t.Errorf("Head = %+v, want main branch", f.Head)
	}
	if f.Signature != nil {
		t.Errorf("Signature = %+v, want nil", f.Signature)
	}
	if !reflect.DeepEqual(f.Install.Bin, []string{"lofetch"}) {
		t.Errorf("Install.Bin = %v", f.Install.Bin)
	}
	if !reflect.DeepEqual(f.Test.Args, []string{"--version"}) {
		t.Errorf("Test.Args = %v", f.Test.Args)
	}
	if f.Test.Timeout != DefaultTestTimeout {
		t.Errorf("Test.Timeout = %v, want %v", f.Test.Timeout, DefaultTestTimeout)
	}
}

func TestFormulaParser_Defaults(t *testing.T) {
	f, err := NewFormulaParser().Parse([]byte(`name: tool
url: https://example.com/tool-1.2.3.tar.gz
head:
  url: https://example.com/tool.git
signature:
  url: https://example.com/tool-1.2.3.tar.gz.asc
  key: keys/tool.asc
test:
  timeout_seconds: 5
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if f.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", f.Version)
	}
	if f.Head.Branch != DefaultHeadBranch {
		t.Errorf("Head.Branch = %q, want %q", f.Head.Branch, DefaultHeadBranch)
	}
	if !reflect.DeepEqual(f.Install.Bin, []string{"tool"}) {
		t.Errorf("Install.Bin = %v, want [tool]", f.Install.Bin)
	}
	if !reflect.DeepEqual(f.Test.Args, DefaultTestArgs) {
		t.Errorf("Test.Args = %v, want %v", f.Test.Args, DefaultTestArgs)
	}
	if f.Test.Timeout != 5*time.Second {
		t.Errorf("Test.Timeout = %v, want 5s", f.Test.Timeout)
	}
	if f.Signature == nil || f.Signature.Key != "keys/tool.asc" {
		t.Errorf("Signature = %+v", f.Signature)
	}
}

func TestFormulaParser_ExplicitVersionWins(t *testing.T) {
	f, err := NewFormulaParser().Parse([]byte(`name: tool
version: 2.0.1
url: https://example.com/tool-2.0.0.tar.gz
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Version != "2.0.1" {
		t.Errorf("Version = %q, want 2.0.1", f.Version)
	}
}

func TestFormulaParser_EmptyTestArgs(t *testing.T) {
	f, err := NewFormulaParser().Parse([]byte(`name: tool
url: https://example.com/tool-1.0.0.tar.gz
test:
  args: []
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Test.Args) != 0 {
		t.Errorf("explicit empty args should be kept, got %v", f.Test.Args)
	}
}

func TestFormulaParser_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty input", ``},
		{"missing name", "url: https://example.com/a-1.0.0.tar.gz\n"},
		{"no source", "name: tool\n"},
		{"unknown key", "name: tool\nurl: https://example.com/a-1.0.0.tar.gz\nsha: abc\n"},
		{"list document", "[]\n"},
		{"version escapes cache", "name: tool\nversion: x/../../victim\nurl: https://example.com/a-1.0.0.tar.gz\n"},
		{"version not semver", "name: tool\nversion: two\nurl: https://example.com/a-1.0.0.tar.gz\n"},
		{"negative timeout", "name: tool\nurl: https://example.com/a-1.0.0.tar.gz\ntest:\n  timeout_seconds: -1\n"},
	}

	parser := NewFormulaParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tt.yaml))
			if !errors.Is(err, entities.ErrInvalidFormula) {
				t.Errorf("Parse() error = %v, want ErrInvalidFormula", err)
			}
		})
	}
}

func TestFormulaParser_ParseFile_Missing(t *testing.T) {
	_, err := NewFormulaParser().ParseFile(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile() error = %v, want not-exist", err)
	}
}
