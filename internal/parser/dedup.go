package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// idPattern is one named matcher in the Deduplicator's prioritized list of
// recognized heading shorthands. Order matters: the first pattern matching
// at the start of the heading wins, mirroring the alternation order the
// ids were historically guessed with.
type idPattern struct {
	name string
	re   *regexp.Regexp
}

var idPatterns = []idPattern{
	{"LetterDigits", regexp.MustCompile(`^[A-Z]\d+`)},
	{"BoxN", regexp.MustCompile(`^Box \d+`)},
	{"ShortPrefixDigits", regexp.MustCompile(`^[A-Z]{1,3}\d+`)},
	{"SebN", regexp.MustCompile(`^Seb\d+`)},
	{"GenericWordDigits", regexp.MustCompile(`^[A-Za-z]+\d*`)},
}

// overviewSkipList holds level-2 headings that describe locations, not
// containers; the Deduplicator leaves them alone.
var overviewSkipList = []string{
	"Oversikt over ting lagret",
	"Oversikt over boksene",
}

// shorthandID guesses a container id from the leading shorthand of a
// heading ("A23 ...", "Box 9 ...", "Seb1 ..."). Spaces inside the match
// are stripped, so "Box 9" yields "Box9". Returns "" when no pattern
// matches.
func shorthandID(heading string) string {
	for _, p := range idPatterns {
		if m := p.re.FindString(heading); m != "" {
			return strings.ReplaceAll(m, " ", "")
		}
	}
	return ""
}

// DedupResult reports what the Deduplicator pre-pass did.
type DedupResult struct {
	// Text is the rewritten document. Equal to the input when Changes is 0.
	Text string
	// Changes counts headings that received an injected ID: prefix.
	Changes int
	// Duplicates maps each colliding tentative id to the unique ids
	// assigned to its occurrences, in document order.
	Duplicates map[string][]string
}

// DeduplicateIDs assigns stable ID: prefixes to level-2 container headings
// that lack one, suffixing an occurrence counter onto colliding ids. Only
// level-2 headings participate; deeper levels are left as-is. Headings
// inside the Intro/Nummereringsregime sections and the known overview
// headings are excluded. The pass is idempotent: on text where every
// candidate heading already carries an explicit ID: tag it changes nothing.
func DeduplicateIDs(text string) DedupResult {
	lines := strings.Split(text, "\n")

	type candidate struct {
		line    int
		id      string
		heading string
	}

	// First pass: collect tentative ids in document order.
	var (
		cands       []candidate
		occurrences = make(map[string][]int) // tentative id -> line numbers
		inSection   bool
	)
	for i, line := range lines {
		if strings.HasPrefix(line, introMarker) || strings.HasPrefix(line, numberingMarker) {
			inSection = true
			continue
		}
		if strings.HasPrefix(line, "# ") {
			inSection = false
		}
		if !strings.HasPrefix(line, "## ") || inSection {
			continue
		}
		if containsAny(line, overviewSkipList) {
			continue
		}

		heading := strings.TrimSpace(line[3:])
		md, _ := ExtractMetadata(heading)
		id := md.Get("id")
		if id == "" {
			id = shorthandID(heading)
		}
		if id == "" {
			continue
		}
		occurrences[id] = append(occurrences[id], i)
		cands = append(cands, candidate{line: i, id: id, heading: heading})
	}

	// Second pass: resolve collisions and inject ID: prefixes.
	res := DedupResult{Duplicates: make(map[string][]string)}
	for _, c := range cands {
		unique := c.id
		if occ := occurrences[c.id]; len(occ) > 1 {
			unique = fmt.Sprintf("%s-%d", c.id, indexOf(occ, c.line)+1)
			res.Duplicates[c.id] = append(res.Duplicates[c.id], unique)
		}

		md, _ := ExtractMetadata(c.heading)
		if md.Get("id") != "" {
			continue
		}
		lines[c.line] = fmt.Sprintf("## ID:%s %s", unique, c.heading)
		res.Changes++
	}

	res.Text = text
	if res.Changes > 0 {
		res.Text = strings.Join(lines, "\n")
	}
	return res
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func indexOf(xs []int, x int) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
