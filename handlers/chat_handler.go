package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/24kshah/nemhem-ai/services/chat"
	"github.com/24kshah/nemhem-ai/services/search"
	"github.com/24kshah/nemhem-ai/services/session"
)

// InvokeRequest is a stateless single-model turn
type InvokeRequest struct {
	Prompt string         `json:"prompt" validate:"required,notblank"`
	Model  string         `json:"model" validate:"required,notblank"`
	Search search.Options `json:"search"`
}

// ChainRequest is a stateless chained turn; models run in order
type ChainRequest struct {
	Prompt string         `json:"prompt" validate:"required,notblank"`
	Models []string       `json:"models" validate:"required,min=1,dive,notblank"`
	Search search.Options `json:"search"`
}

// ChatHandler handles stateless dispatch requests
type ChatHandler struct {
	service ChatService
	logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// HandleInvoke handles POST /api/v1/invoke
func (h *ChatHandler) HandleInvoke(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, h.logger)

	var req InvokeRequest
	if !decodeAndValidate(w, r, &req, logger) {
		return
	}

	logger.Debug("processing invoke", zap.String("model", req.Model))

	turn, err := h.service.Ask(r.Context(), chat.Request{
		Prompt: req.Prompt,
		Mode:   session.ModeSingle,
		Model:  req.Model,
		Search: req.Search,
	})
	if err != nil {
		logger.Warn("invoke rejected", zap.Error(err))
		HandleServiceError(w, err, logger)
		return
	}

	writeTurn(w, turn, logger)
}

// HandleChain handles POST /api/v1/chain
func (h *ChatHandler) HandleChain(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, h.logger)

	var req ChainRequest
	if !decodeAndValidate(w, r, &req, logger) {
		return
	}

	logger.Debug("processing chain", zap.Strings("models", req.Models))

	turn, err := h.service.Ask(r.Context(), chat.Request{
		Prompt: req.Prompt,
		Mode:   session.ModeChain,
		Models: req.Models,
		Search: req.Search,
	})
	if err != nil {
		logger.Warn("chain rejected", zap.Error(err))
		HandleServiceError(w, err, logger)
		return
	}

	writeTurn(w, turn, logger)
}
