// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces/gateways"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces/repositories"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces/services"
	domainservices "github.com/jwuxan/homebrew-lofetch/internal/domain/services"
)

// Checksum policies for formulae whose sha256 is still the empty placeholder
const (
	ChecksumPolicyWarn   = "warn"
	ChecksumPolicyStrict = "strict"
)

// RecipeFactory builds the install/test recipe for a formula
type RecipeFactory func(f *entities.Formula) services.PackageRecipe

// InstallOrchestrator coordinates the fetch, verify, extract, install and test workflow
type InstallOrchestrator struct {
	repo           repositories.FormulaRepository
	fetcher        gateways.FetchGateway
	verifier       gateways.VerificationGateway
	locker         gateways.InstallLocker
	finder         gateways.CacheFinder
	newRecipe      RecipeFactory
	logger         interfaces.Logger
	prefix         string
	cacheDir       string
	checksumPolicy string
}

// InstallOrchestratorConfig holds configuration for the orchestrator
type InstallOrchestratorConfig struct {
	Prefix         string
	CacheDir       string
	ChecksumPolicy string
}

// NewInstallOrchestrator creates a new install orchestrator
func NewInstallOrchestrator(
	repo repositories.FormulaRepository,
	fetcher gateways.FetchGateway,
	verifier gateways.VerificationGateway,
	locker gateways.InstallLocker,
	finder gateways.CacheFinder,
	newRecipe RecipeFactory,
	config InstallOrchestratorConfig,
	logger interfaces.Logger,
) *InstallOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	policy := config.ChecksumPolicy
	if policy == "" {
		policy = ChecksumPolicyWarn
	}

	cacheDir := config.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "tap-cache")
	}

	return &InstallOrchestrator{
		repo:           repo,
		fetcher:        fetcher,
		verifier:       verifier,
		locker:         locker,
		finder:         finder,
		newRecipe:      newRecipe,
		logger:         logger,
		prefix:         config.Prefix,
		cacheDir:       cacheDir,
		checksumPolicy: policy,
	}
}

// InstallOptions selects the install variant
type InstallOptions struct {
	Head    bool // Install from the head branch instead of the release archive
	RunTest bool // Run the smoke test after installing
}

// FetchResult contains the outcome of the fetch, verify and extract stages
type FetchResult struct {
	Formula         *entities.Formula
	Archive         *entities.Artifact // Nil for head checkouts
	Source          *entities.Artifact
	ChecksumPending bool
	Cached          bool
	FetchDuration   time.Duration
}

// InstallResult contains the result of an install operation
type InstallResult struct {
	Formula         *entities.Formula
	Fetch           *FetchResult
	Installed       *entities.Artifact
	Tested          bool
	InstallDuration time.Duration
	TestDuration    time.Duration
	TotalDuration   time.Duration
	Success         bool
	Error           error
}

// InstallFormula runs the full lifecycle for a formula.
// Every stage failure is returned as a *entities.StageError; nothing is retried.
func (o *InstallOrchestrator) InstallFormula(ctx context.Context, name string, opts InstallOptions) (*InstallResult, error) {
	startTime := time.Now()
	result := &InstallResult{}

	f, err := o.repo.GetFormula(ctx, name)
	if err != nil {
		result.Error = fmt.Errorf("failed to load formula: %w", err)
		return result, result.Error
	}
	if opts.Head {
		f = headVariant(f)
	}
	result.Formula = f

	unlock, err := o.locker.Lock(ctx, f.Name)
	if err != nil {
		result.Error = stageErr(entities.StageInstall, f, err)
		return result, result.Error
	}
	defer func() {
		if err := unlock(); err != nil {
			o.logger.Warn("failed to release install lock", interfaces.F("formula", f.Name), interfaces.F("error", err))
		}
	}()

	fetched, err := o.fetch(ctx, f, opts.Head)
	result.Fetch = fetched
	if err != nil {
		result.Error = err
		return result, result.Error
	}

	recipe := o.newRecipe(f)

	o.logger.Info("installing", interfaces.F("formula", f.Name), interfaces.F("version", f.Version), interfaces.F("prefix", o.prefix))
	installStart := time.Now()
	if err := recipe.Install(ctx, fetched.Source.Path, o.prefix); err != nil {
		result.Error = stageErr(entities.StageInstall, f, err)
		return result, result.Error
	}
	result.InstallDuration = time.Since(installStart)
	result.Installed = &entities.Artifact{
		Name:    f.Name,
		Version: f.Version,
		Path:    filepath.Join(o.prefix, "bin", filepath.Base(f.MainBinary())),
		Type:    entities.ArtifactInstalled,
	}

	if opts.RunTest {
		testStart := time.Now()
		if err := recipe.Test(ctx, o.prefix); err != nil {
			result.Error = stageErr(entities.StageTest, f, err)
			return result, result.Error
		}
		result.TestDuration = time.Since(testStart)
		result.Tested = true
	}

	result.Success = true
	result.TotalDuration = time.Since(startTime)
	o.logger.Info("installed", interfaces.F("formula", f.Name), interfaces.F("path", result.Installed.Path))
	return result, nil
}

// FetchFormula downloads, verifies and extracts the release archive without installing it
func (o *InstallOrchestrator) FetchFormula(ctx context.Context, name string, head bool) (*FetchResult, error) {
	f, err := o.repo.GetFormula(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load formula: %w", err)
	}
	if head {
		f = headVariant(f)
	}

	unlock, err := o.locker.Lock(ctx, f.Name)
	if err != nil {
		return nil, stageErr(entities.StageFetch, f, err)
	}
	defer func() {
		if err := unlock(); err != nil {
			o.logger.Warn("failed to release install lock", interfaces.F("formula", f.Name), interfaces.F("error", err))
		}
	}()

	return o.fetch(ctx, f, head)
}

// TestFormula runs the smoke test against the installed prefix
func (o *InstallOrchestrator) TestFormula(ctx context.Context, name string) error {
	f, err := o.repo.GetFormula(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load formula: %w", err)
	}

	if err := o.newRecipe(f).Test(ctx, o.prefix); err != nil {
		return stageErr(entities.StageTest, f, err)
	}

	o.logger.Info("test passed", interfaces.F("formula", f.Name))
	return nil
}

// CleanupCache removes cached downloads of a formula and returns the removed paths.
// Entries of the current version are kept unless all is set.
func (o *InstallOrchestrator) CleanupCache(ctx context.Context, name string, all bool) ([]string, error) {
	f, err := o.repo.GetFormula(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load formula: %w", err)
	}

	unlock, err := o.locker.Lock(ctx, f.Name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = unlock()
	}()

	cached, err := o.finder.FindCached(o.cacheDir, f.Name)
	if err != nil {
		return nil, err
	}

	current, err := cacheKey(f)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, path := range cached {
		base := filepath.Base(path)
		if !all && (base == current || base == current+".tar.gz") {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
		o.logger.Debug("removed cache entry", interfaces.F("path", path))
	}

	return removed, nil
}

func (o *InstallOrchestrator) fetch(ctx context.Context, f *entities.Formula, head bool) (*FetchResult, error) {
	start := time.Now()
	result := &FetchResult{Formula: f}

	if head {
		if !f.HasHead() {
			return result, stageErr(entities.StageFetch, f, zerr.Wrap(entities.ErrNoHead, "head install requested"))
		}

		key, err := cacheKey(f)
		if err != nil {
			return result, stageErr(entities.StageFetch, f, err)
		}

		dest := filepath.Join(o.cacheDir, key)
		o.logger.Info("cloning", interfaces.F("formula", f.Name), interfaces.F("url", f.Head.URL), interfaces.F("branch", f.Head.Branch))
		if err := o.fetcher.Clone(ctx, f.Head.URL, f.Head.Branch, dest); err != nil {
			return result, stageErr(entities.StageFetch, f, err)
		}

		result.Source = &entities.Artifact{Name: f.Name, Version: f.Version, Path: dest, Type: entities.ArtifactCheckout}
		result.FetchDuration = time.Since(start)
		return result, nil
	}

	if f.URL == "" {
		return result, stageErr(entities.StageFetch, f, zerr.Wrap(entities.ErrInvalidFormula, "formula has no url"))
	}

	key, err := cacheKey(f)
	if err != nil {
		return result, stageErr(entities.StageFetch, f, err)
	}

	archive := filepath.Join(o.cacheDir, key+".tar.gz")
	result.Archive = &entities.Artifact{Name: f.Name, Version: f.Version, Path: archive, Type: entities.ArtifactArchive, SHA256: f.SHA256}

	if o.cachedArchiveValid(ctx, f, archive) {
		result.Cached = true
		o.logger.Debug("using cached archive", interfaces.F("path", archive))
	} else {
		o.logger.Info("downloading", interfaces.F("formula", f.Name), interfaces.F("url", f.URL))
		if err := o.fetcher.Download(ctx, f.URL, archive); err != nil {
			return result, stageErr(entities.StageFetch, f, err)
		}
	}
	result.FetchDuration = time.Since(start)

	pending, err := o.verify(ctx, f, archive)
	result.ChecksumPending = pending
	if err != nil {
		return result, err
	}

	workDir := filepath.Join(o.cacheDir, key)
	sourceDir, err := o.fetcher.Extract(ctx, archive, workDir)
	if err != nil {
		return result, stageErr(entities.StageExtract, f, err)
	}

	result.Source = &entities.Artifact{Name: f.Name, Version: f.Version, Path: sourceDir, Type: entities.ArtifactSource}
	return result, nil
}

// verify applies the checksum policy and the optional signature check.
// It reports whether the checksum was still pending.
func (o *InstallOrchestrator) verify(ctx context.Context, f *entities.Formula, archive string) (bool, error) {
	pending := f.ChecksumPending()

	if pending {
		if o.checksumPolicy == ChecksumPolicyStrict {
			return pending, stageErr(entities.StageVerify, f,
				zerr.With(zerr.Wrap(entities.ErrChecksumPending, "strict checksum policy"), "formula", f.Name))
		}

		fields := []interfaces.Field{interfaces.F("formula", f.Name)}
		if sum, err := o.verifier.CalculateChecksum(archive); err == nil {
			fields = append(fields, interfaces.F("sha256", sum))
		}
		o.logger.Warn("checksum pending, skipping verification", fields...)
	} else if err := o.verifier.VerifyChecksum(ctx, archive, f.SHA256); err != nil {
		if errors.Is(err, entities.ErrChecksumMismatch) {
			_ = os.Remove(archive)
		}
		return pending, stageErr(entities.StageVerify, f, err)
	}

	if f.Signature != nil {
		keyPath := f.Signature.Key
		if keyPath != "" && !filepath.IsAbs(keyPath) {
			keyPath = filepath.Join(o.repo.Dir(), keyPath)
		}
		if err := o.verifier.VerifySignature(ctx, archive, f.Signature.URL, keyPath); err != nil {
			return pending, stageErr(entities.StageVerify, f, err)
		}
		o.logger.Debug("signature verified", interfaces.F("formula", f.Name))
	}

	return pending, nil
}

// cachedArchiveValid reports whether a previously downloaded archive can be reused.
// Only archives with a declared checksum qualify.
func (o *InstallOrchestrator) cachedArchiveValid(ctx context.Context, f *entities.Formula, archive string) bool {
	if f.ChecksumPending() {
		return false
	}
	if _, err := os.Stat(archive); err != nil {
		return false
	}
	return o.verifier.VerifyChecksum(ctx, archive, f.SHA256) == nil
}

// GetInstallSummary returns a human-readable summary of the install
func (r *InstallResult) GetInstallSummary() string {
	if !r.Success {
		return fmt.Sprintf("Install failed: %v", r.Error)
	}

	summary := fmt.Sprintf(`Installed %s %s
Binary: %s
Fetch: %v
Install: %v
Total: %v`,
		r.Formula.Name,
		r.Formula.Version,
		r.Installed.Path,
		r.Fetch.FetchDuration.Round(time.Millisecond),
		r.InstallDuration.Round(time.Millisecond),
		r.TotalDuration.Round(time.Millisecond),
	)

	if r.Tested {
		summary += fmt.Sprintf("\nTest: passed (%v)", r.TestDuration.Round(time.Millisecond))
	}
	if r.Fetch.ChecksumPending {
		summary += "\nWarning: checksum pending, archive was not verified"
	}

	return summary
}

func stageErr(stage entities.Stage, f *entities.Formula, err error) error {
	return &entities.StageError{Stage: stage, Formula: f.Name, Err: err}
}

func headVariant(f *entities.Formula) *entities.Formula {
	head := *f
	head.Version = entities.HeadVersion
	return &head
}

func versionLabel(f *entities.Formula) string {
	if f.Version == "" {
		return "latest"
	}
	return f.Version
}

// cacheKey names the cache entries of a formula version, <name>--<version>.
// Both parts must be single path elements so entries stay inside the cache dir.
func cacheKey(f *entities.Formula) (string, error) {
	label := versionLabel(f)
	if !domainservices.IsPathElement(f.Name) || !domainservices.IsPathElement(label) {
		return "", zerr.With(zerr.Wrap(entities.ErrInvalidFormula, "formula name and version must be plain path elements"),
			"cache_entry", f.Name+"--"+label)
	}
	return fmt.Sprintf("%s--%s", f.Name, label), nil
}
