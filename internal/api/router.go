package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/eivindn/inventar/internal/inventoryservice"
	"github.com/eivindn/inventar/internal/sse"
	"github.com/eivindn/inventar/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, provides the SSE endpoint at GET /events and
// receives edit events.
func NewRouter(svc *inventoryservice.Service, store storage.Provider, authEnabled bool, token string, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, broker)
	ph := NewPhotoHandler(svc, store, broker)

	r := chi.NewRouter()
	if authEnabled {
		r.Use(requireBearer(token))
	}

	// Whole-document view.
	r.Get("/inventory", h.GetInventory)

	// Containers.
	r.Get("/containers", h.ListContainers)
	r.Get("/containers/{id}", h.GetContainer)
	r.Get("/containers/{id}/children", h.GetChildren)
	r.Post("/containers/{id}/items", h.AddItem)
	r.Delete("/containers/{id}/items", h.RemoveItem)

	// Search and validation findings.
	r.Get("/search", h.Search)
	r.Get("/issues", h.GetIssues)

	// Photo upload.
	r.Post("/photos", ph.Upload)

	// SSE endpoint (protected by same auth middleware).
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
