package wiring

import (
	"time"

	"github.com/felixgeelhaar/dictado/internal/infrastructure/config"
	infraai "github.com/felixgeelhaar/dictado/pkg/ai"
	domainai "github.com/felixgeelhaar/dictado/pkg/domain/ai"
)

// LoadAIProvider builds the configured model, bounded by the configured
// timeout and attempts. A nil provider means the pipeline runs on rules only.
func LoadAIProvider(cfg *config.Config) (domainai.Provider, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	baseProvider, err := infraai.NewProvider(cfg.AI.Provider, cfg.AI.Model, cfg.AI.BaseURL)
	if err != nil {
		return nil, err
	}
	if baseProvider == nil {
		return nil, nil
	}

	resilienceConfig := infraai.DefaultResilienceConfig()
	resilienceConfig.MaxAttempts = cfg.AI.MaxAttempts
	resilienceConfig.Timeout = time.Duration(cfg.AI.TimeoutMs) * time.Millisecond

	return infraai.NewResilientProviderWithConfig(baseProvider, resilienceConfig), nil
}
