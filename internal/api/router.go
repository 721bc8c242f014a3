package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/linker"
	"github.com/starford/jera/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// resync, if non-nil, rebuilds the index after POST /reload.
func NewRouter(svc *linker.Service, db index.PeriodicIndex, store storage.Provider, authEnabled bool, token string, sseHandler http.Handler, resync func() error) chi.Router {
	h := NewHandler(svc, db, store, resync)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Recognition and resolution.
	r.Post("/suggest", h.Suggest)
	r.Post("/links", h.CreateLink)
	r.Get("/detect", h.Detect)

	// Periodic-note index.
	r.Get("/periodic", h.ListPeriodic)
	r.Get("/periodic/{granularity}/{date}", h.GetPeriodic)

	// Configuration.
	r.Get("/config", h.GetConfig)
	r.Post("/reload", h.Reload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
