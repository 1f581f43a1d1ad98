// Package images implements the image-discovery collaborator: it maps a
// container's photo directory to ordered image references. Thumbnail
// creation is an external concern; this package only reports what exists.
package images

import (
	"fmt"
	"strings"

	"github.com/eivindn/inventar/internal/models"
	"github.com/eivindn/inventar/internal/storage"
)

// Directory layout conventions inside the inventory root.
const (
	PhotosDir   = "photos"
	ResizedDir  = "resized"
	ListingsDir = "photo-listings"
)

// imageExts are the recognized photo file extensions, matched
// case-insensitively.
var imageExts = []string{".jpg", ".jpeg", ".png", ".gif"}

// Discoverer resolves a photo directory key (usually the container id)
// into ordered image references.
type Discoverer interface {
	Discover(dir string) ([]models.Image, error)
}

// FSDiscoverer discovers images from photos/<dir> with thumbnails from
// resized/<dir>. A photo without a resized counterpart uses the full-size
// path for its thumb reference.
type FSDiscoverer struct {
	store storage.Provider
}

// NewFSDiscoverer creates a discoverer over the given inventory storage.
func NewFSDiscoverer(store storage.Provider) *FSDiscoverer {
	return &FSDiscoverer{store: store}
}

// Discover returns the image references for one photo directory, sorted by
// file name. A missing directory yields an empty result.
func (d *FSDiscoverer) Discover(dir string) ([]models.Image, error) {
	if dir == "" {
		return nil, nil
	}
	names, err := d.store.ListFiles(PhotosDir + "/" + dir)
	if err != nil {
		return nil, fmt.Errorf("images: list %s: %w", dir, err)
	}

	resized, err := d.store.ListFiles(ResizedDir + "/" + dir)
	if err != nil {
		return nil, fmt.Errorf("images: list resized %s: %w", dir, err)
	}
	hasThumb := make(map[string]bool, len(resized))
	for _, n := range resized {
		hasThumb[n] = true
	}

	var out []models.Image
	for _, name := range names {
		if !isImage(name) {
			continue
		}
		full := fmt.Sprintf("%s/%s/%s", PhotosDir, dir, name)
		thumb := full
		if hasThumb[name] {
			thumb = fmt.Sprintf("%s/%s/%s", ResizedDir, dir, name)
		}
		out = append(out, models.Image{
			Alt:   dir + "/" + name,
			Thumb: thumb,
			Full:  full,
		})
	}
	return out, nil
}

func isImage(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// WriteListings writes photo-listings/<dir>.txt backup files, one photo
// file name per line, for every non-empty photos/ subdirectory. Returns
// the number of listings written.
func WriteListings(store storage.Provider) (int, error) {
	dirs, err := store.ListDirs(PhotosDir)
	if err != nil {
		return 0, fmt.Errorf("images: list photo dirs: %w", err)
	}

	written := 0
	for _, dir := range dirs {
		names, err := store.ListFiles(PhotosDir + "/" + dir)
		if err != nil {
			return written, fmt.Errorf("images: list %s: %w", dir, err)
		}
		var photos []string
		for _, n := range names {
			if isImage(n) {
				photos = append(photos, n)
			}
		}
		if len(photos) == 0 {
			continue
		}
		content := strings.Join(photos, "\n") + "\n"
		if err := store.Write(ListingsDir+"/"+dir+".txt", []byte(content)); err != nil {
			return written, fmt.Errorf("images: write listing %s: %w", dir, err)
		}
		written++
	}
	return written, nil
}
