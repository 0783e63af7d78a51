package providers

import (
	"strings"
)

// Kind selects the wire protocol a profile speaks
type Kind string

const (
	// KindChatCompletions is an OpenAI-compatible POST /chat/completions endpoint
	KindChatCompletions Kind = "chat_completions"

	// KindGemini is the Gemini generateContent API
	KindGemini Kind = "gemini"
)

// AuthScheme describes how a profile authenticates
type AuthScheme string

const (
	// AuthSingleKey presents one static key
	AuthSingleKey AuthScheme = "single"

	// AuthKeyList tries an ordered list of interchangeable keys
	AuthKeyList AuthScheme = "key_list"
)

// KeyOrder is the order in which a credential set is attempted
type KeyOrder string

const (
	// KeyOrderOrdered tries keys in configured priority order
	KeyOrderOrdered KeyOrder = "ordered"

	// KeyOrderShuffle tries keys in a fresh random permutation per call
	KeyOrderShuffle KeyOrder = "shuffle"
)

// ParseKeyOrder parses a key order, defaulting to ordered
func ParseKeyOrder(s string) KeyOrder {
	if KeyOrder(strings.ToLower(strings.TrimSpace(s))) == KeyOrderShuffle {
		return KeyOrderShuffle
	}
	return KeyOrderOrdered
}

// CredentialSet is an ordered sequence of interchangeable secrets
type CredentialSet struct {
	keys  []string
	order KeyOrder
}

// NewCredentialSet builds a credential set, dropping blank entries
func NewCredentialSet(order KeyOrder, keys ...string) CredentialSet {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	return CredentialSet{keys: cleaned, order: order}
}

// ParseCredentialList builds a credential set from a comma-separated list
func ParseCredentialList(order KeyOrder, raw string) CredentialSet {
	return NewCredentialSet(order, strings.Split(raw, ",")...)
}

// Len returns the number of usable credentials
func (c CredentialSet) Len() int {
	return len(c.keys)
}

// Order returns the attempt order policy
func (c CredentialSet) Order() KeyOrder {
	return c.order
}

// Sequence returns a fresh copy of the keys in attempt order. shuffle is only
// consulted for KeyOrderShuffle and has the signature of rand.Shuffle.
func (c CredentialSet) Sequence(shuffle func(n int, swap func(i, j int))) []string {
	seq := make([]string, len(c.keys))
	copy(seq, c.keys)
	if c.order == KeyOrderShuffle && shuffle != nil && len(seq) > 1 {
		shuffle(len(seq), func(i, j int) { seq[i], seq[j] = seq[j], seq[i] })
	}
	return seq
}

// Profile is the immutable description of one backend
type Profile struct {
	// Name is the stable identifier (e.g., "openrouter")
	Name string `json:"name"`

	// DisplayName is used in user-facing diagnostics (e.g., "OpenRouter")
	DisplayName string `json:"display_name"`

	// Kind selects the transport
	Kind Kind `json:"kind"`

	// Endpoint is the request URL or API base URL
	Endpoint string `json:"endpoint"`

	// Auth describes how credentials are presented
	Auth AuthScheme `json:"auth"`

	// Credentials are never serialized
	Credentials CredentialSet `json:"-"`
}

// Label returns the display name, falling back to the name
func (p Profile) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// Configured reports whether the profile has at least one credential
func (p Profile) Configured() bool {
	return p.Credentials.Len() > 0
}
