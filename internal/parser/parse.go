// Package parser converts inventory markdown into the normalized Document
// structure: a deduplication pre-pass over raw text, a single-pass heading
// walk with parent inference, and an advisory post-parse validator.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/eivindn/inventar/internal/models"
)

// maxHeadingLevel is the deepest marker run treated as a container heading.
// Runs of 7 or more are horizontal-rule style decoration and stay plain text.
const maxHeadingLevel = 6

// maxIDLength caps ids derived from heading text, in runes.
const maxIDLength = 50

// Reserved level-1 section markers. Prefix-matched against the raw line.
const (
	introMarker     = "# Intro"
	numberingMarker = "# Nummereringsregime"
	overviewMarker  = "# Oversikt over"
)

var (
	idStripRe = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	idSpaceRe = regexp.MustCompile(`\s+`)
)

// Parse converts raw inventory markdown into a Document. Parsing never
// fails: every heuristic has a deterministic fallback, so malformed input
// still yields some structure. Data-quality findings are the Validator's
// job, not errors.
//
// Parse assumes DeduplicateIDs has already run on the text when level-2
// heading collisions matter; it does not enforce uniqueness itself.
func Parse(text string) *models.Document {
	w := &walker{
		doc:      &models.Document{Containers: []*models.Container{}},
		inferred: make(map[string]string),
	}
	for _, line := range strings.Split(text, "\n") {
		w.step(line)
	}
	w.closeSection()

	// Final reconciliation: containers that ended the walk without a parent
	// pick one up from the side table. This is what lets a bullet like
	// "* ID:A23-Sub ..." under container C parent a heading for A23-Sub
	// that only appears later in the document.
	for _, c := range w.doc.Containers {
		if c.Parent == nil {
			if p, ok := w.inferred[c.ID]; ok {
				c.SetParent(p)
			}
		}
	}
	return w.doc
}

// sectionState tracks verbatim capture of the reserved Intro and
// Nummereringsregime sections.
type sectionState int

const (
	sectionNone sectionState = iota
	sectionIntro
	sectionNumbering
)

// walker is the line classifier plus its accumulated state: the open
// container, the reserved-section capture buffer, the per-level chain of
// open ancestor ids, and the inferred-parent side table.
type walker struct {
	doc *models.Document

	section      sectionState
	sectionLines []string

	current *models.Container

	// stack holds the currently open container id at each heading level
	// (index 1..maxHeadingLevel). Opening a heading at level L discards
	// every deeper entry before recording L.
	stack [maxHeadingLevel + 1]string

	// anchor is the most recent top-level container id; level-2 headings
	// with no other parent signal fall back to it.
	anchor string

	// inferred maps container id -> parent id discovered from structure:
	// item listings that reference the id, or nesting position. Explicit
	// parent: tags always beat it.
	inferred map[string]string
}

func (w *walker) step(line string) {
	if w.section != sectionNone {
		// Reserved sections run until the next level-1 heading; deeper
		// headings inside them are captured verbatim.
		if !strings.HasPrefix(line, "# ") {
			w.sectionLines = append(w.sectionLines, line)
			return
		}
		w.closeSection()
	}

	level, rest, isHeading := classifyHeading(line)
	switch {
	case !isHeading:
		w.collect(line)
	case level == 1:
		w.openTopLevel(line, rest)
	default:
		w.openNested(level, rest)
	}
}

// classifyHeading reports whether line is a container-grade heading
// (1 to maxHeadingLevel marker characters) and returns its level and the
// trimmed text after the markers. A level-1 marker must be followed by a
// space to count; deeper markers follow the lenient original grammar.
func classifyHeading(line string) (int, string, bool) {
	if !strings.HasPrefix(line, "#") {
		return 0, "", false
	}
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level > maxHeadingLevel {
		return 0, "", false
	}
	if level == 1 && !strings.HasPrefix(line, "# ") {
		// A lone "#word" is neither heading nor body text; it just closes
		// whatever container was open.
		return 1, "", true
	}
	return level, strings.TrimSpace(line[level:]), true
}

func (w *walker) openTopLevel(line, rest string) {
	w.current = nil

	switch {
	case !strings.HasPrefix(line, "# "):
		// Malformed level-1 marker; see classifyHeading.
	case strings.HasPrefix(line, introMarker):
		w.section = sectionIntro
	case strings.HasPrefix(line, numberingMarker):
		w.section = sectionNumbering
	case strings.HasPrefix(line, "# ID:") ||
		(strings.HasPrefix(line, overviewMarker) && strings.Contains(line, "ID:")):
		md, name := ExtractMetadata(rest)
		id := md.Get("id")
		if id == "" {
			// No resolvable id: the heading is skipped and its body lines
			// fall through unowned.
			return
		}
		w.openContainer(1, id, name, md, "")
	default:
		md, name := ExtractMetadata(rest)
		id := md.Get("id")
		if id == "" {
			id = sanitizeID(headingText(name, rest), 1)
		}
		w.openContainer(1, id, name, md, "")
	}
}

func (w *walker) openNested(level int, rest string) {
	md, name := ExtractMetadata(rest)
	id := md.Get("id")
	if id == "" {
		id = sanitizeID(headingText(name, rest), level)
	}

	// Parent precedence: explicit tag, side table, nesting position,
	// top-level anchor. First match wins; the nesting/anchor outcomes are
	// recorded back into the side table so re-derivation is stable.
	parent := md.Get("parent")
	if parent == "" {
		switch {
		case w.inferred[id] != "":
			parent = w.inferred[id]
		case w.stack[level-1] != "":
			parent = w.stack[level-1]
			w.inferred[id] = parent
		case level == 2 && w.anchor != "" && w.anchor != id:
			parent = w.anchor
			w.inferred[id] = parent
		}
	}

	w.openContainer(level, id, name, md, parent)
}

func (w *walker) openContainer(level int, id, heading string, md models.Metadata, parent string) {
	for l := level; l <= maxHeadingLevel; l++ {
		w.stack[l] = ""
	}
	w.stack[level] = id
	if level == 1 {
		w.anchor = id
	}

	c := &models.Container{
		ID:       id,
		Heading:  heading,
		Items:    []models.Item{},
		Images:   []models.Image{},
		Metadata: md,
	}
	c.SetParent(parent)
	w.doc.Containers = append(w.doc.Containers, c)
	w.current = c
}

// collect feeds one body line into the open container: image references
// are skipped (image discovery is a filesystem concern), bullets become
// items, everything else non-blank accumulates into the description.
func (w *walker) collect(line string) {
	if w.current == nil {
		return
	}
	switch {
	case strings.HasPrefix(line, "!["):
		// Image markdown is ignored; container.Images is populated from
		// the photos directories after the parse.
	case strings.HasPrefix(line, "* "):
		w.addItem(strings.TrimSpace(line[2:]), false)
	case strings.HasPrefix(line, "  * "):
		w.addItem(strings.TrimSpace(line[4:]), true)
	default:
		if text := strings.TrimSpace(line); text != "" {
			if w.current.Description == "" {
				w.current.Description = text
			} else {
				w.current.Description += " " + text
			}
		}
	}
}

func (w *walker) addItem(raw string, indented bool) {
	md, name := ExtractMetadata(raw)

	// A top-level bullet carrying an id tells us the referenced container
	// lives (or will live) inside this one. Indented bullets stay out of
	// parent inference.
	if !indented {
		if id := md.Get("id"); id != "" && id != w.current.ID {
			w.inferred[id] = w.current.ID
		}
	}

	w.current.Items = append(w.current.Items, models.Item{
		ID:       md.Get("id"),
		Parent:   md.Get("parent"),
		Name:     name,
		RawText:  raw,
		Metadata: md,
		Indented: indented,
	})
}

func (w *walker) closeSection() {
	text := strings.TrimSpace(strings.Join(w.sectionLines, "\n"))
	switch w.section {
	case sectionIntro:
		w.doc.Intro = text
	case sectionNumbering:
		w.doc.NumberingScheme = text
	}
	w.section = sectionNone
	w.sectionLines = nil
}

// headingText picks the text an id is derived from: the cleaned name when
// metadata stripping left anything, otherwise the raw heading.
func headingText(name, raw string) string {
	if name != "" {
		return name
	}
	return raw
}

// sanitizeID derives a container id from heading text: characters outside
// letters/digits/underscore/hyphen/space are stripped, whitespace runs
// become single hyphens, and the result is capped at maxIDLength runes.
// Falls back to Container-{level} when nothing survives.
func sanitizeID(text string, level int) string {
	s := idStripRe.ReplaceAllString(text, "")
	s = idSpaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	if s == "" {
		return fmt.Sprintf("Container-%d", level)
	}
	if r := []rune(s); len(r) > maxIDLength {
		s = string(r[:maxIDLength])
	}
	return s
}
