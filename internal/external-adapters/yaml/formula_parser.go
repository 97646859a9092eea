// Package yaml provides YAML-based formula parsing and repository implementations.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/services"
)

// Defaults applied to fields a descriptor leaves out
const (
	DefaultHeadBranch  = "main"
	DefaultTestTimeout = 30 * time.Second
)

// DefaultTestArgs is the smoke test invocation when test.args is omitted
var DefaultTestArgs = []string{"--version"}

// yamlFormula represents the raw YAML structure
type yamlFormula struct {
	Name      string         `yaml:"name"`
	Desc      string         `yaml:"desc"`
	Homepage  string         `yaml:"homepage"`
	URL       string         `yaml:"url"`
	SHA256    string         `yaml:"sha256"`
	License   string         `yaml:"license"`
	Version   string         `yaml:"version"`
	Head      *yamlHead      `yaml:"head"`
	Signature *yamlSignature `yaml:"signature"`
	Install   yamlInstall    `yaml:"install"`
	Test      yamlTest       `yaml:"test"`
}

type yamlHead struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
}

type yamlSignature struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

type yamlInstall struct {
	Bin []string `yaml:"bin"`
}

type yamlTest struct {
	Args           []string `yaml:"args"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// FormulaParser parses YAML formula files
type FormulaParser struct{}

// NewFormulaParser creates a new YAML parser
func NewFormulaParser() *FormulaParser {
	return &FormulaParser{}
}

// ParseFile parses a YAML formula file into a Formula entity
func (p *FormulaParser) ParseFile(filePath string) (*entities.Formula, error) {
	//nolint:gosec // G304: filePath is a descriptor path from the repository
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a Formula entity.
// Unknown keys are rejected so typos in a descriptor do not silently drop a field.
func (p *FormulaParser) Parse(data []byte) (*entities.Formula, error) {
	var raw yamlFormula
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, zerr.Wrap(entities.ErrInvalidFormula, "empty descriptor")
		}
		return nil, zerr.Wrap(entities.ErrInvalidFormula, fmt.Sprintf("failed to parse YAML: %v", err))
	}

	if raw.Name == "" {
		return nil, zerr.Wrap(entities.ErrInvalidFormula, "formula must have a name")
	}
	if raw.URL == "" && (raw.Head == nil || raw.Head.URL == "") {
		return nil, zerr.With(zerr.Wrap(entities.ErrInvalidFormula, "formula needs a url or a head"), "formula", raw.Name)
	}
	if raw.Version != "" && (!services.IsSemver(raw.Version) || !services.IsPathElement(raw.Version)) {
		return nil, zerr.With(zerr.Wrap(entities.ErrInvalidFormula, "version must be a semantic version"),
			"version", raw.Version)
	}
	if raw.Test.TimeoutSeconds < 0 {
		return nil, zerr.With(zerr.Wrap(entities.ErrInvalidFormula, "test.timeout_seconds must not be negative"), "formula", raw.Name)
	}

	f := &entities.Formula{
		Name:        raw.Name,
		Description: raw.Desc,
		Homepage:    raw.Homepage,
		URL:         raw.URL,
		SHA256:      raw.SHA256,
		License:     raw.License,
		Version:     raw.Version,
		Head:        convertHead(raw.Head),
		Signature:   convertSignature(raw.Signature),
		Install:     convertInstall(raw.Name, raw.Install),
		Test:        convertTest(raw.Test),
	}

	if f.Version == "" && f.URL != "" {
		if v, ok := services.VersionFromURL(f.URL); ok {
			f.Version = v
		}
	}

	return f, nil
}

func convertHead(yh *yamlHead) *entities.FormulaHead {
	if yh == nil || yh.URL == "" {
		return nil
	}
	branch := yh.Branch
	if branch == "" {
		branch = DefaultHeadBranch
	}
	return &entities.FormulaHead{URL: yh.URL, Branch: branch}
}

func convertSignature(ys *yamlSignature) *entities.FormulaSignature {
	if ys == nil || ys.URL == "" {
		return nil
	}
	return &entities.FormulaSignature{URL: ys.URL, Key: ys.Key}
}

func convertInstall(name string, yi yamlInstall) entities.InstallStep {
	bin := yi.Bin
	if len(bin) == 0 {
		bin = []string{name}
	}
	return entities.InstallStep{Bin: bin}
}

func convertTest(yt yamlTest) entities.TestStep {
	args := yt.Args
	if args == nil {
		args = append([]string(nil), DefaultTestArgs...)
	}
	timeout := DefaultTestTimeout
	if yt.TimeoutSeconds > 0 {
		timeout = time.Duration(yt.TimeoutSeconds) * time.Second
	}
	return entities.TestStep{Args: args, Timeout: timeout}
}
