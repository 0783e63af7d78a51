package app

import (
	"github.com/24kshah/nemhem-ai/config"
	"github.com/24kshah/nemhem-ai/services/providers"
	"github.com/24kshah/nemhem-ai/services/routing"
)

// BuildProfiles turns provider configuration into the routing table's profiles.
// OpenRouter is the only key-list provider; the others carry a single key.
func BuildProfiles(cfg config.ProvidersConfig) routing.Profiles {
	return routing.Profiles{
		Gemini: singleKeyProfile(routing.ProviderGemini, "Gemini", providers.KindGemini, cfg.Gemini),
		Together: singleKeyProfile(routing.ProviderTogether, "Together", providers.KindChatCompletions,
			cfg.Together),
		Groq: singleKeyProfile(routing.ProviderGroq, "Groq", providers.KindChatCompletions, cfg.Groq),
		Mistral: singleKeyProfile(routing.ProviderMistral, "MistralAI", providers.KindChatCompletions,
			cfg.Mistral),
		OpenRouter: providers.Profile{
			Name:        routing.ProviderOpenRouter,
			DisplayName: "OpenRouter",
			Kind:        providers.KindChatCompletions,
			Endpoint:    cfg.OpenRouter.BaseURL,
			Auth:        providers.AuthKeyList,
			Credentials: providers.NewCredentialSet(
				providers.ParseKeyOrder(cfg.OpenRouter.KeyOrder), cfg.OpenRouter.APIKeys...),
		},
	}
}

func singleKeyProfile(name, display string, kind providers.Kind, cfg config.ProviderConfig) providers.Profile {
	return providers.Profile{
		Name:        name,
		DisplayName: display,
		Kind:        kind,
		Endpoint:    cfg.BaseURL,
		Auth:        providers.AuthSingleKey,
		Credentials: providers.NewCredentialSet(providers.KeyOrderOrdered, cfg.APIKey),
	}
}

// All returns the profiles in routing table order, catch-all last
func All(p routing.Profiles) []providers.Profile {
	return []providers.Profile{p.Gemini, p.Together, p.Groq, p.Mistral, p.OpenRouter}
}
