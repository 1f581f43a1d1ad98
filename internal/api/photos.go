package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/eivindn/inventar/internal/apperr"
	"github.com/eivindn/inventar/internal/images"
	"github.com/eivindn/inventar/internal/inventoryservice"
	"github.com/eivindn/inventar/internal/sse"
	"github.com/eivindn/inventar/internal/storage"
)

const maxUploadBytes = 50 << 20 // 50 MB

// PhotoHandler accepts photo uploads into a container's photo directory.
type PhotoHandler struct {
	svc    *inventoryservice.Service
	store  storage.Provider
	broker *sse.Broker
}

// NewPhotoHandler creates a handler writing through the inventory storage.
func NewPhotoHandler(svc *inventoryservice.Service, store storage.Provider, broker *sse.Broker) *PhotoHandler {
	return &PhotoHandler{svc: svc, store: store, broker: broker}
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal).
func safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return cleaned, nil
}

// Upload handles POST /api/photos (multipart/form-data, fields "container"
// and "file"). The file lands in photos/<container photo dir>/ and the
// photo listing backup for that directory is refreshed.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid multipart")
		return
	}

	containerID := r.FormValue("container")
	if containerID == "" {
		writeError(w, http.StatusBadRequest, "missing 'container' field in multipart form")
		return
	}
	c, err := h.svc.Container(containerID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' field in multipart form")
		return
	}
	defer file.Close()

	name, err := safeName(header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	rel := images.PhotosDir + "/" + c.PhotoDir() + "/" + name
	if err := h.store.Write(rel, data); err != nil {
		slog.Error("photo upload failed", slog.String("path", rel), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to write file")
		return
	}

	h.svc.RefreshImages()
	if _, err := h.svc.ExportPhotoListings(); err != nil {
		slog.Warn("photo listings refresh failed", slog.String("error", err.Error()))
	}
	if h.broker != nil {
		h.broker.PublishContainerEvent(sse.EventPhotoUploaded, c.ID, name)
	}

	writeJSON(w, http.StatusCreated, PhotoUploadResponse{
		Container: c.ID,
		Filename:  name,
		Size:      int64(len(data)),
		Path:      rel,
	})
}
