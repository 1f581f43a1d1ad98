// Package inventoryservice coordinates the parse pipeline: it reads the
// inventory markdown, runs the deduplication pre-pass, parses, attaches
// discovered images, validates, and rebuilds the derived search cache.
// All reads and edits go through one service so concurrent HTTP, MCP, and
// watcher traffic see a consistent snapshot.
package inventoryservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/eivindn/inventar/internal/apperr"
	"github.com/eivindn/inventar/internal/checksum"
	"github.com/eivindn/inventar/internal/images"
	"github.com/eivindn/inventar/internal/index"
	"github.com/eivindn/inventar/internal/models"
	"github.com/eivindn/inventar/internal/parser"
	"github.com/eivindn/inventar/internal/storage"
)

// Snapshot is one consistent view of the parsed inventory: the document,
// the validator findings for it, and the checksum of the source text it
// was built from.
type Snapshot struct {
	Document *models.Document
	Issues   []string
	Checksum string
}

// Filter narrows a container listing. All set fields must match; string
// matching is case-insensitive.
type Filter struct {
	Parent string   // exact parent id; "" means no parent filter
	Tags   []string // every tag must be present on the container
	Prefix string   // container id prefix
}

// SearchHit is one search result enriched with the matching item lines.
type SearchHit struct {
	ID      string   `json:"id"`
	Parent  string   `json:"parent,omitempty"`
	Heading string   `json:"heading"`
	Snippet string   `json:"snippet"`
	Items   []string `json:"items"`
}

// maxHitItems caps the matching item lines returned per search hit.
const maxHitItems = 5

// Service owns the inventory pipeline and the current snapshot.
type Service struct {
	store      storage.Provider
	db         index.ContainerIndex
	discoverer images.Discoverer
	logger     *slog.Logger
	sourceFile string
	jsonFile   string

	mu   sync.Mutex
	doc  *models.Document
	iss  []string
	csum string
}

// NewService creates the inventory service for one source file. The JSON
// view is written next to it with the same base name.
func NewService(store storage.Provider, db index.ContainerIndex, disc images.Discoverer, logger *slog.Logger, sourceFile string) *Service {
	return &Service{
		store:      store,
		db:         db,
		discoverer: disc,
		logger:     logger,
		sourceFile: sourceFile,
		jsonFile:   strings.TrimSuffix(sourceFile, ".md") + ".json",
	}
}

// SourceFile returns the inventory markdown file name, relative to the
// storage root.
func (s *Service) SourceFile() string { return s.sourceFile }

// Store exposes the underlying inventory storage.
func (s *Service) Store() storage.Provider { return s.store }

// Load runs the full pipeline. It is safe to call concurrently; callers
// racing on the same revision coalesce into one rebuild.
func (s *Service) Load(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked()
}

// reloadLocked is the pipeline body. Caller holds s.mu.
//
// Order matters: deduplication rewrites the source BEFORE parsing, so the
// parse and everything derived from it only ever see unique level-2 ids.
// The rewrite is skipped when nothing changed, keeping reloads idempotent.
func (s *Service) reloadLocked() error {
	data, err := s.store.Read(s.sourceFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("inventoryservice: read source: %w", err)
	}

	dedup := parser.DeduplicateIDs(string(data))
	if dedup.Changes > 0 {
		s.logger.Info("dedup: rewrote duplicate ids",
			slog.Int("changes", dedup.Changes),
			slog.Int("duplicate_ids", len(dedup.Duplicates)))
		if err := s.store.Write(s.sourceFile, []byte(dedup.Text)); err != nil {
			return fmt.Errorf("inventoryservice: write deduped source: %w", err)
		}
		data = []byte(dedup.Text)
	}

	cs := checksum.Sum(data)
	if cs == s.csum && s.doc != nil {
		// Same revision as the current snapshot; nothing to do.
		return nil
	}

	doc := parser.Parse(string(data))
	for _, c := range doc.Containers {
		imgs, imgErr := s.discoverer.Discover(c.PhotoDir())
		if imgErr != nil {
			s.logger.Warn("images: discovery failed",
				slog.String("container", c.ID),
				slog.String("error", imgErr.Error()))
			continue
		}
		if imgs != nil {
			c.Images = imgs
		}
	}

	issues := parser.Validate(doc)
	for _, issue := range issues {
		s.logger.Warn("validate: " + issue)
	}

	if err := s.db.Rebuild(doc, cs); err != nil {
		return fmt.Errorf("inventoryservice: rebuild index: %w", err)
	}

	if err := s.writeJSONView(doc); err != nil {
		return err
	}

	s.doc = doc
	s.iss = issues
	s.csum = cs

	s.logger.Info("inventory: loaded",
		slog.Int("containers", len(doc.Containers)),
		slog.Int("issues", len(issues)))
	return nil
}

// writeJSONView serializes the document to the JSON companion file with
// stable key order, so unchanged inventories produce byte-identical output.
func (s *Service) writeJSONView(doc *models.Document) error {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("inventoryservice: marshal json view: %w", err)
	}
	if err := s.store.Write(s.jsonFile, append(out, '\n')); err != nil {
		return fmt.Errorf("inventoryservice: write json view: %w", err)
	}
	return nil
}

// Snapshot returns the current document, issues, and source checksum.
// The returned document must be treated as read-only.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Document: s.doc, Issues: s.iss, Checksum: s.csum}
}

// Container returns the container with the given id. Lookup is exact
// first, then case-insensitive, matching the lenient query tools.
func (s *Service) Container(id string) (*models.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(id)
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

// findLocked resolves an id to a container. Caller holds s.mu.
func (s *Service) findLocked(id string) *models.Container {
	if s.doc == nil {
		return nil
	}
	if c := s.doc.FindContainer(id); c != nil {
		return c
	}
	for _, c := range s.doc.Containers {
		if strings.EqualFold(c.ID, id) {
			return c
		}
	}
	return nil
}

// Containers returns all containers matching the filter, in document order.
func (s *Service) Containers(f Filter) []*models.Container {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return []*models.Container{}
	}

	out := []*models.Container{}
	for _, c := range s.doc.Containers {
		if f.Parent != "" && !strings.EqualFold(c.ParentID(), f.Parent) {
			continue
		}
		if f.Prefix != "" && !strings.HasPrefix(strings.ToLower(c.ID), strings.ToLower(f.Prefix)) {
			continue
		}
		if !hasAllTags(c, f.Tags) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Children returns the direct children of the given container.
func (s *Service) Children(id string) ([]*models.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent := s.findLocked(id)
	if parent == nil {
		return nil, apperr.ErrNotFound
	}

	out := []*models.Container{}
	for _, c := range s.doc.Containers {
		if strings.EqualFold(c.ParentID(), parent.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Search queries the index and enriches each hit with the item lines of
// that container which contain the query, capped at maxHitItems.
func (s *Service) Search(_ context.Context, query string, limit int) ([]SearchHit, error) {
	results, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hits := make([]SearchHit, 0, len(results))
	needle := strings.ToLower(query)
	for _, r := range results {
		hit := SearchHit{
			ID:      r.ID,
			Parent:  r.Parent,
			Heading: r.Heading,
			Snippet: r.Snippet,
			Items:   []string{},
		}
		if c := s.findLocked(r.ID); c != nil {
			for _, it := range c.Items {
				if len(hit.Items) == maxHitItems {
					break
				}
				if strings.Contains(strings.ToLower(it.RawText), needle) {
					hit.Items = append(hit.Items, it.RawText)
				}
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// AddItem appends a bullet to the container's section and reloads. The
// ifMatch checksum, when non-empty, must match the current source revision.
// Returns the refreshed container.
func (s *Service) AddItem(_ context.Context, containerID, text, ifMatch string) (*models.Container, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("inventoryservice: empty item text: %w", apperr.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, data, err := s.beginEditLocked(containerID, ifMatch)
	if err != nil {
		return nil, err
	}

	next, err := appendItemLine(string(data), c.ID, text)
	if err != nil {
		return nil, err
	}
	return s.commitEditLocked(c.ID, next)
}

// RemoveItem deletes the first bullet in the container's section whose
// text contains match (case-insensitive), indented or not, then reloads.
// Returns the refreshed container and the removed line.
func (s *Service) RemoveItem(_ context.Context, containerID, match, ifMatch string) (*models.Container, string, error) {
	match = strings.TrimSpace(match)
	if match == "" {
		return nil, "", fmt.Errorf("inventoryservice: empty item match: %w", apperr.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, data, err := s.beginEditLocked(containerID, ifMatch)
	if err != nil {
		return nil, "", err
	}

	next, removed, err := removeItemLine(string(data), c.ID, match)
	if err != nil {
		return nil, "", err
	}
	refreshed, err := s.commitEditLocked(c.ID, next)
	if err != nil {
		return nil, "", err
	}
	return refreshed, removed, nil
}

// beginEditLocked resolves the target container and re-reads the source
// under the optimistic concurrency check. Caller holds s.mu.
func (s *Service) beginEditLocked(containerID, ifMatch string) (*models.Container, []byte, error) {
	c := s.findLocked(containerID)
	if c == nil {
		return nil, nil, apperr.ErrNotFound
	}

	data, err := s.store.Read(s.sourceFile)
	if err != nil {
		return nil, nil, fmt.Errorf("inventoryservice: read source: %w", err)
	}
	if ifMatch != "" && ifMatch != checksum.Sum(data) {
		return nil, nil, apperr.ErrConflict
	}
	return c, data, nil
}

// commitEditLocked writes the edited source and runs the pipeline on it.
// Caller holds s.mu.
func (s *Service) commitEditLocked(containerID, next string) (*models.Container, error) {
	if err := s.store.Write(s.sourceFile, []byte(next)); err != nil {
		return nil, fmt.Errorf("inventoryservice: write source: %w", err)
	}
	if err := s.reloadLocked(); err != nil {
		return nil, err
	}
	refreshed := s.findLocked(containerID)
	if refreshed == nil {
		// The edit should never drop the container it targeted.
		return nil, apperr.ErrNotFound
	}
	return refreshed, nil
}

// RefreshImages re-runs image discovery for every container in the current
// snapshot. Used after photo uploads, which change the filesystem but not
// the markdown source.
func (s *Service) RefreshImages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return
	}
	for _, c := range s.doc.Containers {
		imgs, err := s.discoverer.Discover(c.PhotoDir())
		if err != nil {
			s.logger.Warn("images: discovery failed",
				slog.String("container", c.ID),
				slog.String("error", err.Error()))
			continue
		}
		if imgs == nil {
			imgs = []models.Image{}
		}
		c.Images = imgs
	}
}

// ExportPhotoListings writes the photo-listings backup files and returns
// how many were written.
func (s *Service) ExportPhotoListings() (int, error) {
	return images.WriteListings(s.store)
}

func hasAllTags(c *models.Container, tags []string) bool {
	for _, want := range tags {
		found := false
		for _, have := range c.Metadata.Tags {
			if strings.EqualFold(have, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
