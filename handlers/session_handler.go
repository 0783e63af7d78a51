package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/24kshah/nemhem-ai/services/session"
	"github.com/24kshah/nemhem-ai/utils"
)

// SendMessageRequest is one chat turn in a session
type SendMessageRequest struct {
	Prompt string `json:"prompt" validate:"required,notblank"`
}

// SessionHandler handles session lifecycle and session chat turns
type SessionHandler struct {
	sessions SessionStore
	chat     ChatService
	logger   *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions SessionStore, chat ChatService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		chat:     chat,
		logger:   logger,
	}
}

// HandleCreate handles POST /api/v1/sessions
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, h.logger)

	var opts session.Options
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &opts, logger) {
			return
		}
	}

	sess, err := h.sessions.Create(opts)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	logger.Info("session created",
		zap.String("session_id", sess.ID.String()),
		zap.String("mode", string(sess.Options.Mode)))

	if err := utils.WriteCreated(w, sess); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleGet handles GET /api/v1/sessions/{id}
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, h.logger)

	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.sessions.Get(id)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	if err := utils.WriteOK(w, sess); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleUpdateOptions handles PUT /api/v1/sessions/{id}/options
func (h *SessionHandler) HandleUpdateOptions(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, h.logger)

	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var opts session.Options
	if !decodeAndValidate(w, r, &opts, logger) {
		return
	}

	sess, err := h.sessions.UpdateOptions(id, opts)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	if err := utils.WriteOK(w, sess); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleSendMessage handles POST /api/v1/sessions/{id}/messages
func (h *SessionHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, h.logger)

	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req SendMessageRequest
	if !decodeAndValidate(w, r, &req, logger) {
		return
	}

	turn, err := h.chat.Send(r.Context(), id, req.Prompt)
	if err != nil {
		logger.Warn("session turn rejected",
			zap.String("session_id", id.String()),
			zap.Error(err))
		HandleServiceError(w, err, logger)
		return
	}

	writeTurn(w, turn, logger)
}

// HandleClearMessages handles DELETE /api/v1/sessions/{id}/messages
func (h *SessionHandler) HandleClearMessages(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, h.logger)

	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.sessions.Clear(id)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	if err := utils.WriteOK(w, sess); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleDelete handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, h.logger)

	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Delete(id); err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	logger.Info("session deleted", zap.String("session_id", id.String()))
	utils.WriteNoContent(w)
}

// sessionID parses the {id} path parameter, writing a 400 when it is not a UUID
func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid session ID", map[string]interface{}{"id": err.Error()})
		return uuid.Nil, false
	}
	return id, true
}
