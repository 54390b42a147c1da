package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/BrianCLong/govgate/pkg/killswitch"
	"github.com/BrianCLong/govgate/pkg/telemetry/metrics"
	"github.com/BrianCLong/govgate/pkg/tenant"
)

// Admin exposes the operator endpoints: health probes and kill-switch
// management. Admin routes sit behind the enforcement middleware, so
// privilege-tier rules apply to them like any other route.
type Admin struct {
	store       *killswitch.Store
	source      killswitch.Source
	environment tenant.Environment
	collector   *metrics.Collector
	logger      *slog.Logger
}

// NewAdmin creates the admin handler set.
func NewAdmin(store *killswitch.Store, source killswitch.Source, env tenant.Environment, collector *metrics.Collector) *Admin {
	return &Admin{
		store:       store,
		source:      source,
		environment: env,
		collector:   collector,
		logger:      slog.Default().With("component", "gateway.admin"),
	}
}

// Healthz is the liveness probe. Always 200 while the process serves.
func (a *Admin) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Readyz is the readiness probe. In prod the gateway is only ready once
// a kill-switch snapshot is loaded; before that every request would be
// denied CONFIG_MISSING, so traffic should not be routed here yet.
func (a *Admin) Readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if a.environment == tenant.EnvProd && a.store.Current() == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "not_ready",
			"reason": "kill-switch configuration not loaded",
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// KillSwitchRefresh handles POST /admin/killswitch/refresh: an explicit
// push-style refresh alongside the file watcher.
func (a *Admin) KillSwitchRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := a.store.Refresh(r.Context(), a.source); err != nil {
		a.collector.RecordConfigRefresh("failure")
		a.logger.Error("admin-triggered kill-switch refresh failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "refresh_failed",
		})
		return
	}
	a.collector.RecordConfigRefresh("success")

	resp := map[string]string{"status": "refreshed"}
	if snap := a.store.Current(); snap != nil {
		resp["version"] = snap.Config.Version
		resp["mode"] = string(snap.Config.Mode)
		resp["hash"] = snap.Hash
	} else {
		resp["mode"] = "absent"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// KillSwitchStatus handles GET /admin/killswitch: the current snapshot,
// or 404 when none is loaded.
func (a *Admin) KillSwitchStatus(w http.ResponseWriter, r *http.Request) {
	snap := a.store.Current()
	if snap == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "absent",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"version":   snap.Config.Version,
		"mode":      string(snap.Config.Mode),
		"scope":     string(snap.Config.Scope),
		"hash":      snap.Hash,
		"loaded_at": snap.LoadedAt,
	})
}
