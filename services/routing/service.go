package routing

import (
	"strings"
	"unicode"

	"github.com/24kshah/nemhem-ai/services/providers"
)

// Provider names used by the default rule table
const (
	ProviderGemini     = "gemini"
	ProviderTogether   = "together"
	ProviderGroq       = "groq"
	ProviderMistral    = "mistral"
	ProviderOpenRouter = "openrouter"
)

// Rule routes identifiers containing any of its keywords to a profile
type Rule struct {
	// Name is the rule identifier, normally the provider name
	Name string

	// Keywords are lower-case substrings matched against the model identifier
	Keywords []string

	// Profile is returned when the rule matches
	Profile providers.Profile
}

// Matches reports whether the lower-cased identifier contains any keyword
func (r Rule) Matches(id string) bool {
	for _, k := range r.Keywords {
		if k != "" && strings.Contains(id, k) {
			return true
		}
	}
	return false
}

// Route is the outcome of resolving a selector
type Route struct {
	// Selector is the raw label supplied by the caller
	Selector string `json:"selector"`

	// ModelID is the identifier sent to the provider, case preserved
	ModelID string `json:"model_id"`

	// Rule names the rule that matched, or the fallback name
	Rule string `json:"rule"`

	// Fallback is true when no specific rule matched
	Fallback bool `json:"fallback"`

	// Profile is the resolved backend
	Profile providers.Profile `json:"profile"`
}

// Router resolves model selectors against an ordered rule table.
// It is immutable after construction and safe for concurrent use.
type Router struct {
	rules    []Rule
	fallback providers.Profile
}

// NewRouter creates a router; rules are evaluated in order and the first match wins
func NewRouter(rules []Rule, fallback providers.Profile) *Router {
	copied := make([]Rule, len(rules))
	for i, r := range rules {
		keywords := make([]string, len(r.Keywords))
		for j, k := range r.Keywords {
			keywords[j] = strings.ToLower(k)
		}
		copied[i] = Rule{Name: r.Name, Keywords: keywords, Profile: r.Profile}
	}
	return &Router{rules: copied, fallback: fallback}
}

// Profiles groups the backends used by the default rule table
type Profiles struct {
	Gemini     providers.Profile
	Together   providers.Profile
	Groq       providers.Profile
	Mistral    providers.Profile
	OpenRouter providers.Profile
}

// DefaultRules returns the rule table in priority order
func DefaultRules(p Profiles) []Rule {
	return []Rule{
		{Name: ProviderGemini, Keywords: []string{"gemini"}, Profile: p.Gemini},
		{Name: ProviderTogether, Keywords: []string{"llama-vision", "deepseek-r1-distill"}, Profile: p.Together},
		{Name: ProviderGroq, Keywords: []string{"llama3", "mixtral", "gemma"}, Profile: p.Groq},
		{Name: ProviderMistral, Keywords: []string{"mistral-small", "mistral-medium", "mistral-large"}, Profile: p.Mistral},
	}
}

// NewDefaultRouter builds the router with the default table and OpenRouter as catch-all
func NewDefaultRouter(p Profiles) *Router {
	return NewRouter(DefaultRules(p), p.OpenRouter)
}

// Resolve returns the profile owning the selector's model
func (r *Router) Resolve(selector string) providers.Profile {
	return r.Route(selector).Profile
}

// Route resolves a selector; it never fails, unmatched identifiers use the fallback
func (r *Router) Route(selector string) Route {
	id := ModelID(selector)
	lower := strings.ToLower(id)

	for _, rule := range r.rules {
		if rule.Matches(lower) {
			return Route{Selector: selector, ModelID: id, Rule: rule.Name, Profile: rule.Profile}
		}
	}

	return Route{
		Selector: selector,
		ModelID:  id,
		Rule:     r.fallback.Name,
		Fallback: true,
		Profile:  r.fallback,
	}
}

// Rules returns a copy of the rule table
func (r *Router) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Fallback returns the catch-all profile
func (r *Router) Fallback() providers.Profile {
	return r.fallback
}

// ModelID strips a display label ("🟧 Groq: ") from a selector.
// The label ends at the first colon followed by whitespace, so colons inside
// identifiers such as "moonshotai/kimi-dev-72b:free" are kept. Without such a
// label, a bare "Groq:llama3-8b-8192" is cut at its first colon unless the
// text before it is a vendor path.
func ModelID(selector string) string {
	for i, c := range selector {
		if c != ':' {
			continue
		}
		rest := selector[i+1:]
		if rest != "" && unicode.IsSpace(rune(rest[0])) {
			return strings.TrimSpace(rest)
		}
	}

	trimmed := strings.TrimSpace(selector)
	prefix, rest, found := strings.Cut(trimmed, ":")
	if !found || strings.Contains(prefix, "/") {
		return trimmed
	}
	if rest = strings.TrimSpace(rest); rest == "" {
		return trimmed
	}
	return rest
}
