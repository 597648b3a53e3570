package wiring

import (
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/dictado/internal/infrastructure/config"
	"github.com/felixgeelhaar/dictado/pkg/application"
	domainai "github.com/felixgeelhaar/dictado/pkg/domain/ai"
)

// AppServices exposes the application services wired together with a workspace.
type AppServices struct {
	Workspace *Workspace
	Commands  *application.CommandService
	Provider  domainai.Provider
	Logger    *slog.Logger
}

// BuildAppServices loads the configuration for root and wires the pipeline.
func BuildAppServices(root string, logger *slog.Logger) (*AppServices, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	return BuildAppServicesWithProvider(root, cfg, logger, LoadAIProvider)
}

// BuildAppServicesWithProvider allows callers to supply a custom AI provider
// resolver. When the resolver fails the services are still returned, running
// on rules only, together with the resolver error.
func BuildAppServicesWithProvider(root string, cfg *config.Config, logger *slog.Logger, resolver func(*config.Config) (domainai.Provider, error)) (*AppServices, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	workspace, err := NewWorkspace(root, cfg)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		_ = workspace.Close()
		return nil, err
	}

	provider, err := resolver(cfg)
	var loadErr error
	if err != nil {
		loadErr = fmt.Errorf("AI provider config fallback: %w", err)
		logger.Warn("language model disabled", "provider", cfg.AI.Provider, "error", err)
		provider = nil
	}

	commands := application.NewCommandService(workspace.Store, provider, application.ServiceConfig{
		SearchLimit:  cfg.Pipeline.SearchLimit,
		ListPreview:  cfg.Pipeline.ListPreview,
		StoreTimeout: cfg.StoreTimeout(),
		Location:     loc,
	}, logger)

	return &AppServices{
		Workspace: workspace,
		Commands:  commands,
		Provider:  provider,
		Logger:    logger,
	}, loadErr
}

// Close releases the workspace store.
func (s *AppServices) Close() error {
	return s.Workspace.Close()
}
