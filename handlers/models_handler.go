package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/24kshah/nemhem-ai/config"
	"github.com/24kshah/nemhem-ai/services/providers"
	"github.com/24kshah/nemhem-ai/services/routing"
	"github.com/24kshah/nemhem-ai/utils"
)

// RouteTable resolves selectors and exposes the rule table
type RouteTable interface {
	Route(selector string) routing.Route
	Rules() []routing.Rule
	Fallback() providers.Profile
}

// ModelEntry is one catalog label with the backend it routes to
type ModelEntry struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	RouteInfo
}

// RouteInfo describes where a selector is dispatched
type RouteInfo struct {
	ModelID    string `json:"model_id"`
	Provider   string `json:"provider"`
	Display    string `json:"provider_display"`
	Rule       string `json:"rule"`
	Fallback   bool   `json:"fallback"`
	Configured bool   `json:"configured"`
}

// RuleEntry is one row of the routing table
type RuleEntry struct {
	Name       string   `json:"name"`
	Keywords   []string `json:"keywords"`
	Provider   string   `json:"provider"`
	Configured bool     `json:"configured"`
}

// ModelsResponse is the GET /api/v1/models body
type ModelsResponse struct {
	Models   []ModelEntry `json:"models"`
	Rules    []RuleEntry  `json:"rules"`
	Fallback RuleEntry    `json:"fallback"`
}

// ModelsHandler serves the model catalog and routing table
type ModelsHandler struct {
	catalog config.Catalog
	router  RouteTable
	logger  *zap.Logger
}

// NewModelsHandler creates a new ModelsHandler
func NewModelsHandler(catalog config.Catalog, router RouteTable, logger *zap.Logger) *ModelsHandler {
	return &ModelsHandler{
		catalog: catalog,
		router:  router,
		logger:  logger,
	}
}

// HandleList handles GET /api/v1/models
func (h *ModelsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, h.logger)

	resp := ModelsResponse{
		Models: make([]ModelEntry, 0, len(h.catalog.Models)),
		Rules:  make([]RuleEntry, 0),
	}

	for _, m := range h.catalog.Models {
		resp.Models = append(resp.Models, ModelEntry{
			Label:       m.Label,
			Description: m.Description,
			RouteInfo:   routeInfo(h.router.Route(m.Label)),
		})
	}

	for _, rule := range h.router.Rules() {
		resp.Rules = append(resp.Rules, RuleEntry{
			Name:       rule.Name,
			Keywords:   rule.Keywords,
			Provider:   rule.Profile.Label(),
			Configured: rule.Profile.Configured(),
		})
	}

	fallback := h.router.Fallback()
	resp.Fallback = RuleEntry{
		Name:       fallback.Name,
		Keywords:   []string{},
		Provider:   fallback.Label(),
		Configured: fallback.Configured(),
	}

	if err := utils.WriteOK(w, resp); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleRoute handles GET /api/v1/models/route?selector=...
func (h *ModelsHandler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, h.logger)

	selector := strings.TrimSpace(r.URL.Query().Get("selector"))
	if selector == "" {
		_ = utils.WriteBadRequest(w, "selector query parameter is required", nil)
		return
	}

	if err := utils.WriteOK(w, routeInfo(h.router.Route(selector))); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

func routeInfo(route routing.Route) RouteInfo {
	return RouteInfo{
		ModelID:    route.ModelID,
		Provider:   route.Profile.Name,
		Display:    route.Profile.Label(),
		Rule:       route.Rule,
		Fallback:   route.Fallback,
		Configured: route.Profile.Configured(),
	}
}
