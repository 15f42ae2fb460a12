package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webdeck/homebridge-indigo/internal/bridge"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Get(s.wsCfg.Path, s.handleWebSocket)

	// Push notification endpoint. The Indigo notification plugin issues a
	// plain GET naming the changed device; it carries no body and no auth.
	r.Route("/devices", func(r chi.Router) {
		r.Get("/", s.handleListAccessories)
		r.Get("/{id}", s.handleDeviceChanged)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// accessorySummary is one entry of the accessory listing.
type accessorySummary struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Variant string   `json:"variant"`
	Traits  []string `json:"traits"`
}

// handleListAccessories returns every bridged accessory.
func (s *Server) handleListAccessories(w http.ResponseWriter, _ *http.Request) {
	adapters := s.registry.Adapters()
	out := make([]accessorySummary, 0, len(adapters))
	for _, a := range adapters {
		traits := a.Traits()
		names := make([]string, len(traits))
		for i, t := range traits {
			names[i] = string(t)
		}
		out = append(out, accessorySummary{
			ID:      a.ID(),
			Name:    a.Name(),
			Variant: string(a.Variant()),
			Traits:  names,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"accessories": out})
}

// handleDeviceChanged reconciles one device after a push notification.
//
// Responses: 200 when the device was reconciled, 404 when the identifier is
// not a bridged accessory, 500 when the reconcile fetch failed.
func (s *Server) handleDeviceChanged(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	adapter, err := s.registry.Lookup(id)
	if err != nil {
		if errors.Is(err, bridge.ErrAdapterNotFound) {
			writeNotFound(w, "no bridged accessory with id "+id)
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	if err := adapter.Reconcile(r.Context()); err != nil {
		s.reconcileFailed.Add(1)
		s.logger.Error("push reconcile failed", "device", id, "error", err)
		writeInternalError(w, "reconcile failed")
		return
	}

	s.reconcileOK.Add(1)
	writeJSON(w, http.StatusOK, map[string]any{"reconciled": id})
}
