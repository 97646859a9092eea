// Package app wires configuration, adapters and domain services into a runnable tap.
package app

import (
	"io"

	"github.com/jwuxan/homebrew-lofetch/internal/config"
	"github.com/jwuxan/homebrew-lofetch/internal/domain-adapters/gateways"
	orchestrators "github.com/jwuxan/homebrew-lofetch/internal/domain-orchestrators"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces/repositories"
	recipes "github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces/services"
	"github.com/jwuxan/homebrew-lofetch/internal/domain/services"
	"github.com/jwuxan/homebrew-lofetch/internal/external-adapters/charmlog"
	"github.com/jwuxan/homebrew-lofetch/internal/external-adapters/yaml"
)

// App holds the wired components used by the CLI
type App struct {
	Config       *config.Config
	Logger       interfaces.Logger
	Formulae     repositories.FormulaRepository
	Audit        *services.AuditService
	Orchestrator *orchestrators.InstallOrchestrator
}

// New builds an App from resolved configuration; logs go to logOut
func New(cfg *config.Config, logOut io.Writer) (*App, error) {
	logger, err := charmlog.New(logOut, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	repo := yaml.NewFormulaRepository(cfg.FormulaDir, logger)
	installer := gateways.NewBinaryInstaller()
	runner := gateways.NewCommandRunner()

	orch := orchestrators.NewInstallOrchestrator(
		repo,
		gateways.NewDownloader(logger),
		gateways.NewVerificationGateway(),
		gateways.NewInstallLocker(cfg.Prefix, cfg.LockTimeout),
		gateways.NewArtifactFinder(),
		func(f *entities.Formula) recipes.PackageRecipe {
			return services.NewBinaryRecipe(f, installer, runner, logger)
		},
		orchestrators.InstallOrchestratorConfig{
			Prefix:         cfg.Prefix,
			CacheDir:       cfg.CacheDir,
			ChecksumPolicy: cfg.ChecksumPolicy,
		},
		logger,
	)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Formulae:     repo,
		Audit:        services.NewAuditService(),
		Orchestrator: orch,
	}, nil
}
