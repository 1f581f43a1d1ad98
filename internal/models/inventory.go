// Package models defines the domain types for Inventar.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Document is the normalized structure produced by one parse of an
// inventory markdown file. Containers keep document order, which is
// display order; consumers needing a tree build it from Parent references.
type Document struct {
	Intro           string       `json:"intro"`
	NumberingScheme string       `json:"numbering_scheme"`
	Containers      []*Container `json:"containers"`
}

// FindContainer returns the container with the given id, or nil.
// Matching is exact; callers wanting the lenient lookup the query tools
// offer should use the service layer.
func (d *Document) FindContainer(id string) *Container {
	for _, c := range d.Containers {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Container is one physical storage unit (box, shelf, room), built from
// one heading section. Field order here is the JSON key order contract.
type Container struct {
	ID          string   `json:"id"`
	Parent      *string  `json:"parent"`
	Heading     string   `json:"heading"`
	Description string   `json:"description"`
	Items       []Item   `json:"items"`
	Images      []Image  `json:"images"`
	PhotosLink  string   `json:"photos_link"`
	Metadata    Metadata `json:"metadata"`
}

// ParentID returns the parent container id, or "" for top-level containers.
func (c *Container) ParentID() string {
	if c.Parent == nil {
		return ""
	}
	return *c.Parent
}

// SetParent records a parent reference. An empty id clears it.
func (c *Container) SetParent(id string) {
	if id == "" {
		c.Parent = nil
		return
	}
	c.Parent = &id
}

// PhotoDir resolves the photo directory for this container:
// metadata "photos" key, then the legacy photos_link, then the id itself.
func (c *Container) PhotoDir() string {
	if dir := c.Metadata.Get("photos"); dir != "" {
		return dir
	}
	if c.PhotosLink != "" {
		return strings.Trim(strings.ReplaceAll(c.PhotosLink, "photos/", ""), "/")
	}
	return c.ID
}

// Item is a leaf entry inside a container's bullet list. Items are not
// required to be addressable; ID is set only when the bullet carried an
// explicit id tag. RawText keeps the original bullet text for round-trip
// editing.
type Item struct {
	ID       string   `json:"id,omitempty"`
	Parent   string   `json:"parent,omitempty"`
	Name     string   `json:"name"`
	RawText  string   `json:"raw_text"`
	Metadata Metadata `json:"metadata"`
	Indented bool     `json:"indented"`
}

// Image is one discovered image reference, keyed by container id and
// populated by the image-discovery collaborator after the structural parse.
type Image struct {
	Alt   string `json:"alt"`
	Thumb string `json:"thumb"`
	Full  string `json:"full"`
}

// Metadata holds the inline key:value annotations of a heading or bullet:
// lowercase keys mapping to raw string values, plus the accumulated tag
// list from "tag:" keys. Tags keep document order and are deliberately not
// deduplicated.
type Metadata struct {
	Fields map[string]string
	Tags   []string
}

// Get returns the value stored under key, or "".
func (m Metadata) Get(key string) string {
	return m.Fields[key]
}

// Set stores value under key, allocating the field map on first use.
func (m *Metadata) Set(key, value string) {
	if m.Fields == nil {
		m.Fields = make(map[string]string)
	}
	m.Fields[key] = value
}

// MarshalJSON encodes metadata as a flat object: field keys in sorted
// order, then the optional "tags" array. The ordering is fixed so that
// serializing the same document twice yields identical bytes.
func (m Metadata) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.Fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	if len(m.Tags) > 0 {
		if len(keys) > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"tags":`)
		tb, err := json.Marshal(m.Tags)
		if err != nil {
			return nil, err
		}
		buf.Write(tb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the flat object form produced by MarshalJSON.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("models: metadata: %w", err)
	}
	m.Fields = nil
	m.Tags = nil
	for k, v := range raw {
		if k == "tags" {
			if err := json.Unmarshal(v, &m.Tags); err != nil {
				return fmt.Errorf("models: metadata tags: %w", err)
			}
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("models: metadata key %q: %w", k, err)
		}
		m.Set(k, s)
	}
	return nil
}
