package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/24kshah/nemhem-ai/app"
	"github.com/24kshah/nemhem-ai/services/providers"
)

// Version is reported by the status endpoint
const Version = "0.1.0"

// HealthCheck returns a simple health check handler
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// ReadinessCheck reports whether turns can be dispatched: both transports
// registered and at least one provider holding a credential
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		status := "ready"

		for _, kind := range []providers.Kind{providers.KindChatCompletions, providers.KindGemini} {
			if deps.Transports == nil {
				checks["transport_"+string(kind)] = "not_initialized"
				status = "not_ready"
				continue
			}
			if _, err := deps.Transports.Get(kind); err != nil {
				checks["transport_"+string(kind)] = "missing"
				status = "not_ready"
				continue
			}
			checks["transport_"+string(kind)] = "registered"
		}

		if len(deps.ConfiguredProviders()) == 0 {
			checks["providers"] = "none_configured"
			status = "not_ready"
		} else {
			checks["providers"] = "configured"
		}

		if deps.Sessions == nil {
			checks["sessions"] = "not_initialized"
			status = "not_ready"
		} else {
			checks["sessions"] = "healthy"
		}

		w.Header().Set("Content-Type", "application/json")
		if status == "ready" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	}
}

// ProviderStatus is one provider row in the status response
type ProviderStatus struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Kind        string `json:"kind"`
	Configured  bool   `json:"configured"`
	Credentials int    `json:"credentials"`
	KeyOrder    string `json:"key_order"`
}

// StatusHandler returns application status information
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := app.All(deps.Profiles)
		provs := make([]ProviderStatus, 0, len(all))
		for _, p := range all {
			provs = append(provs, ProviderStatus{
				Name:        p.Name,
				DisplayName: p.Label(),
				Kind:        string(p.Kind),
				Configured:  p.Configured(),
				Credentials: p.Credentials.Len(),
				KeyOrder:    string(p.Credentials.Order()),
			})
		}

		response := map[string]interface{}{
			"version":     Version,
			"environment": deps.Config.Environment,
			"providers":   provs,
		}
		if deps.Sessions != nil {
			response["sessions"] = deps.Sessions.Len()
		}
		if deps.Metrics != nil {
			response["turns"] = deps.Metrics.Snapshot()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
