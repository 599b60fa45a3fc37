package providers

import (
	"go.uber.org/zap"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

// Credential carries the connection settings for one provider.
type Credential struct {
	APIKey  string
	BaseURL string
}

// Build constructs adapters for every provider with a configured API key.
// Providers without credentials are skipped, not errored: the routing engine
// treats an unregistered provider as absent from the stack.
func Build(creds map[string]Credential, log *zap.Logger) map[string]domain.Searcher {
	constructors := map[string]func(apiKey, baseURL string) domain.Searcher{
		domain.ProviderTavily:     func(k, u string) domain.Searcher { return NewTavily(k, u) },
		domain.ProviderBrave:      func(k, u string) domain.Searcher { return NewBrave(k, u) },
		domain.ProviderKagi:       func(k, u string) domain.Searcher { return NewKagi(k, u) },
		domain.ProviderExa:        func(k, u string) domain.Searcher { return NewExa(k, u) },
		domain.ProviderSerpAPI:    func(k, u string) domain.Searcher { return NewSerpAPI(k, u) },
		domain.ProviderPerplexity: func(k, u string) domain.Searcher { return NewPerplexity(k, u) },
	}

	registry := make(map[string]domain.Searcher, len(constructors))
	for name, build := range constructors {
		cred, ok := creds[name]
		if !ok || cred.APIKey == "" {
			log.Debug("provider skipped, no API key", zap.String("provider", name))
			continue
		}
		registry[name] = build(cred.APIKey, cred.BaseURL)
		log.Info("provider registered", zap.String("provider", name))
	}

	return registry
}
