package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/24kshah/nemhem-ai/services"
	"github.com/24kshah/nemhem-ai/services/search"
)

// Mode selects between one model and a chain of models
type Mode string

const (
	ModeSingle Mode = "single"
	ModeChain  Mode = "chain"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Options are the per-session chat toggles
type Options struct {
	Mode   Mode           `json:"mode" validate:"omitempty,oneof=single chain"`
	Model  string         `json:"model,omitempty"`
	Models []string       `json:"models,omitempty" validate:"omitempty,dive,required"`
	Search search.Options `json:"search"`
}

// Normalize fills the default mode and trims selectors
func (o Options) Normalize() Options {
	if o.Mode == "" {
		o.Mode = ModeSingle
	}
	o.Model = strings.TrimSpace(o.Model)
	models := make([]string, 0, len(o.Models))
	for _, m := range o.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	o.Models = models
	return o
}

// Validate checks the mode value
func (o Options) Validate() error {
	switch o.Mode {
	case "", ModeSingle, ModeChain:
		return nil
	default:
		return services.ErrInvalidSessionMode.Detailed("mode", string(o.Mode))
	}
}

// Message is one chat history entry
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Failed    bool      `json:"failed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a chat conversation with its options
type Session struct {
	ID        uuid.UUID `json:"id"`
	Options   Options   `json:"options"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// clone returns a deep copy so callers never share the store's slices
func (s *Session) clone() *Session {
	out := *s
	out.Messages = append(make([]Message, 0, len(s.Messages)), s.Messages...)
	out.Options.Models = append([]string(nil), s.Options.Models...)
	return &out
}
