// Package handlers contains thin HTTP handlers: decode, validate, call the
// service, map errors, write the response envelope.
package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/24kshah/nemhem-ai/middleware"
	"github.com/24kshah/nemhem-ai/services/chat"
	"github.com/24kshah/nemhem-ai/services/session"
	"github.com/24kshah/nemhem-ai/utils"
)

// ChatService runs chat turns
type ChatService interface {
	// Ask runs a stateless turn
	Ask(ctx context.Context, req chat.Request) (*chat.Turn, error)

	// Send runs a turn in a session and records it in the history
	Send(ctx context.Context, sessionID uuid.UUID, prompt string) (*chat.Turn, error)
}

// SessionStore manages chat sessions
type SessionStore interface {
	Create(opts session.Options) (*session.Session, error)
	Get(id uuid.UUID) (*session.Session, error)
	UpdateOptions(id uuid.UUID, opts session.Options) (*session.Session, error)
	Clear(id uuid.UUID) (*session.Session, error)
	Delete(id uuid.UUID) error
}

// decodeAndValidate decodes the JSON body into dst and validates it. On failure
// the error response is already written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) bool {
	if err := utils.DecodeJSON(r, dst); err != nil {
		logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", map[string]interface{}{"body": err.Error()})
		return false
	}

	if err := utils.ValidateStruct(dst); err != nil {
		logger.Warn("request validation failed", zap.Error(err))
		HandleValidationError(w, err, logger)
		return false
	}
	return true
}

// requestLogger returns the request-scoped logger set by middleware.RequestLogger
func requestLogger(r *http.Request, fallback *zap.Logger) *zap.Logger {
	return middleware.LoggerFromContext(r.Context(), fallback)
}

// writeTurn writes a completed turn. Dispatch failures are results, not API
// errors, so the status is always 200 and clients branch on result.status.
func writeTurn(w http.ResponseWriter, turn *chat.Turn, logger *zap.Logger) {
	logger.Info("chat turn served",
		zap.String("turn_id", turn.ID.String()),
		zap.String("mode", string(turn.Mode)),
		zap.String("provider", turn.Result.Provider),
		zap.String("status", string(turn.Result.Status)),
		zap.Int64("latency_ms", turn.Latency.Milliseconds()))

	if err := utils.WriteOK(w, turn); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}
