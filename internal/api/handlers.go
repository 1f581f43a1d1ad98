package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eivindn/inventar/internal/apperr"
	"github.com/eivindn/inventar/internal/inventoryservice"
	"github.com/eivindn/inventar/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *inventoryservice.Service
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil; no events are
// published then.
func NewHandler(svc *inventoryservice.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

func (h *Handler) publish(eventType, containerID, item string) {
	if h.broker != nil {
		h.broker.PublishContainerEvent(eventType, containerID, item)
	}
}

// ifMatchHeader extracts the If-Match checksum, stripping standard ETag
// quotes.
func ifMatchHeader(r *http.Request) string {
	return strings.Trim(r.Header.Get("If-Match"), `"`)
}

// GetInventory handles GET /api/inventory.
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Snapshot()
	if snap.Document == nil {
		writeError(w, http.StatusServiceUnavailable, "inventory not loaded")
		return
	}
	writeJSON(w, http.StatusOK, InventoryResponse{
		Intro:           snap.Document.Intro,
		NumberingScheme: snap.Document.NumberingScheme,
		Containers:      snap.Document.Containers,
		Issues:          nonNilStrings(snap.Issues),
		Checksum:        snap.Checksum,
	})
}

// ListContainers handles GET /api/containers with optional parent, tag,
// and prefix filters. tag may repeat; all given tags must match.
func (h *Handler) ListContainers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	containers := h.svc.Containers(inventoryservice.Filter{
		Parent: q.Get("parent"),
		Tags:   q["tag"],
		Prefix: q.Get("prefix"),
	})
	writeJSON(w, http.StatusOK, ContainerListResponse{
		Containers: containers,
		Total:      len(containers),
	})
}

// GetContainer handles GET /api/containers/{id}.
func (h *Handler) GetContainer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.svc.Container(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("get container failed", slog.String("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GetChildren handles GET /api/containers/{id}/children.
func (h *Handler) GetChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kids, err := h.svc.Children(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("get children failed", slog.String("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, ContainerListResponse{Containers: kids, Total: len(kids)})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// GetIssues handles GET /api/issues.
func (h *Handler) GetIssues(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Snapshot()
	writeJSON(w, http.StatusOK, IssuesResponse{Issues: nonNilStrings(snap.Issues)})
}

// AddItem handles POST /api/containers/{id}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := h.svc.AddItem(r.Context(), id, req.Text, ifMatchHeader(r))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found")
		case errors.Is(err, apperr.ErrConflict):
			writeError(w, http.StatusConflict, "checksum mismatch")
		case errors.Is(err, apperr.ErrInvalid):
			writeError(w, http.StatusBadRequest, "text is required")
		default:
			slog.Error("add item failed", slog.String("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	h.publish(sse.EventItemAdded, c.ID, strings.TrimSpace(req.Text))
	writeJSON(w, http.StatusCreated, c)
}

// RemoveItem handles DELETE /api/containers/{id}/items.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req RemoveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, removed, err := h.svc.RemoveItem(r.Context(), id, req.Match, ifMatchHeader(r))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found")
		case errors.Is(err, apperr.ErrConflict):
			writeError(w, http.StatusConflict, "checksum mismatch")
		case errors.Is(err, apperr.ErrInvalid):
			writeError(w, http.StatusBadRequest, "match is required")
		default:
			slog.Error("remove item failed", slog.String("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	h.publish(sse.EventItemRemoved, c.ID, removed)
	writeJSON(w, http.StatusOK, RemoveItemResponse{Removed: removed, Container: c})
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
