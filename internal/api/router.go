package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/davenersa/beacon-core/internal/telemetry"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Device submission
	r.Post("/submit", s.handleSubmit)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/deviceinfo", s.handleDeviceInfo)
		r.Post("/audio", s.handleAudioUpload)

		r.Get("/devices", s.handleListDevices)
		for _, cat := range telemetry.AllCategories() {
			r.Get("/"+string(cat), s.handleCategory(cat))
		}
	})

	// Observer stream
	r.Get(s.wsCfg.Path, s.handleWebSocket)

	// Uploaded media and collection console assets
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(s.storage.UploadDir))))
	r.Handle("/*", http.FileServer(http.Dir(s.storage.PublicDir)))

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"devices": len(s.store.DeviceIDs()),
	})
}
