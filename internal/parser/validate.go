package parser

import (
	"fmt"
	"strings"

	"github.com/eivindn/inventar/internal/models"
)

// Validate inspects a parsed document for referential problems and returns
// one human-readable issue per finding, in stable order. It never mutates
// the structure: issues are advisory and the document stays usable
// regardless (downstream tooling decides whether to block on them).
//
// Items referencing a container id with no section of its own are
// deliberately not flagged; forward references to containers documented
// elsewhere are normal.
func Validate(doc *models.Document) []string {
	var issues []string

	// Duplicate ids, one issue per extra occurrence, and parent values
	// grouped per container id.
	seen := make(map[string]bool)
	parents := make(map[string][]string)
	var parentOrder []string
	for _, c := range doc.Containers {
		if c.ID == "" {
			continue
		}
		if seen[c.ID] {
			issues = append(issues, fmt.Sprintf("duplicate container id: %s", c.ID))
		}
		seen[c.ID] = true

		if p := c.ParentID(); p != "" {
			if _, ok := parents[c.ID]; !ok {
				parentOrder = append(parentOrder, c.ID)
			}
			parents[c.ID] = append(parents[c.ID], p)
		}
	}

	// A container id carrying more than one distinct parent value signals
	// ambiguous inference. Informational: the first-precedence value is
	// what is actually stored.
	for _, id := range parentOrder {
		if uniq := distinct(parents[id]); len(uniq) > 1 {
			issues = append(issues, fmt.Sprintf("%s has multiple parents: %s", id, strings.Join(uniq, ", ")))
		}
	}

	// Parent references must point at a known container.
	for _, c := range doc.Containers {
		if p := c.ParentID(); p != "" && !seen[p] {
			issues = append(issues, fmt.Sprintf("%s: parent %q not found", c.ID, p))
		}
	}

	return issues
}

// distinct returns the unique values of xs, keeping first-seen order.
func distinct(xs []string) []string {
	seen := make(map[string]bool, len(xs))
	var out []string
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}
