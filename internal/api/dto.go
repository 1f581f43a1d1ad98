package api

import (
	"github.com/eivindn/inventar/internal/inventoryservice"
	"github.com/eivindn/inventar/internal/models"
)

// AddItemRequest is the request body for appending an item to a container.
type AddItemRequest struct {
	Text string `json:"text"`
}

// RemoveItemRequest is the request body for removing an item by match.
type RemoveItemRequest struct {
	Match string `json:"match"`
}

// InventoryResponse is the full parsed inventory plus its advisory issues
// and the source checksum clients use for If-Match edits.
type InventoryResponse struct {
	Intro           string              `json:"intro"`
	NumberingScheme string              `json:"numbering_scheme"`
	Containers      []*models.Container `json:"containers"`
	Issues          []string            `json:"issues"`
	Checksum        string              `json:"checksum"`
}

// ContainerListResponse wraps a filtered container listing.
type ContainerListResponse struct {
	Containers []*models.Container `json:"containers"`
	Total      int                 `json:"total"`
}

// SearchResponse wraps search hits.
type SearchResponse struct {
	Results []inventoryservice.SearchHit `json:"results"`
}

// IssuesResponse wraps the validator findings.
type IssuesResponse struct {
	Issues []string `json:"issues"`
}

// RemoveItemResponse reports the removed line and the refreshed container.
type RemoveItemResponse struct {
	Removed   string            `json:"removed"`
	Container *models.Container `json:"container"`
}

// PhotoUploadResponse is returned after a successful photo upload.
type PhotoUploadResponse struct {
	Container string `json:"container"`
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	Path      string `json:"path"`
}
