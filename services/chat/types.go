package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/24kshah/nemhem-ai/services/dispatch"
	"github.com/24kshah/nemhem-ai/services/search"
	"github.com/24kshah/nemhem-ai/services/session"
)

// Request is one stateless chat turn
type Request struct {
	Prompt string `json:"prompt" validate:"required"`

	// Mode defaults to single; single uses Model, chain uses Models in order
	Mode   session.Mode   `json:"mode,omitempty" validate:"omitempty,oneof=single chain"`
	Model  string         `json:"model,omitempty"`
	Models []string       `json:"models,omitempty" validate:"omitempty,dive,required"`
	Search search.Options `json:"search"`
}

// Turn is the outcome of one chat turn
type Turn struct {
	ID        uuid.UUID    `json:"id"`
	SessionID *uuid.UUID   `json:"session_id,omitempty"`
	Mode      session.Mode `json:"mode"`

	// Prompt is what the user typed; EnrichedPrompt is what the first model received
	Prompt         string         `json:"prompt"`
	EnrichedPrompt string         `json:"enriched_prompt"`
	Enrichment     []search.Block `json:"enrichment,omitempty"`

	// Steps is set for chain turns only
	Steps  []dispatch.Step `json:"steps,omitempty"`
	Result dispatch.Result `json:"result"`

	// Reply is the assistant text shown to the user
	Reply   string        `json:"reply"`
	Latency time.Duration `json:"latency_ns"`
}

// OK reports whether the final result succeeded
func (t *Turn) OK() bool {
	return t.Result.OK()
}
