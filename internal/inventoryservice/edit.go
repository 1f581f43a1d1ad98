package inventoryservice

import (
	"fmt"
	"strings"

	"github.com/eivindn/inventar/internal/apperr"
	"github.com/eivindn/inventar/internal/parser"
)

// sectionBounds locates the body of containerID's section in the source:
// start is the index of the line after its heading, end is the index of
// the next heading-grade line (or len(lines)). Heading-like lines inside
// the verbatim Intro/Nummereringsregime sections are plain text and never
// match, mirroring the parse walk. containerID must be the canonical id
// of a container the parser produced from this text.
func sectionBounds(lines []string, containerID string) (start, end int, err error) {
	start = -1
	inReserved := false
	for i, line := range lines {
		if start < 0 {
			if inReserved {
				if !strings.HasPrefix(line, "# ") {
					continue
				}
				inReserved = false
			}
			if parser.IsReservedSectionStart(line) {
				inReserved = true
				continue
			}
			if id, _, ok := parser.HeadingID(line); ok && id == containerID {
				start = i + 1
			}
			continue
		}
		if parser.IsSectionBoundary(line) {
			return start, i, nil
		}
	}
	if start < 0 {
		return 0, 0, fmt.Errorf("inventoryservice: no heading for %s: %w", containerID, apperr.ErrNotFound)
	}
	return start, len(lines), nil
}

// appendItemLine inserts "* text" as the last bullet of the container's
// section, before any trailing blank lines.
func appendItemLine(source, containerID, text string) (string, error) {
	lines := strings.Split(source, "\n")
	start, end, err := sectionBounds(lines, containerID)
	if err != nil {
		return "", err
	}

	insert := end
	for insert > start && strings.TrimSpace(lines[insert-1]) == "" {
		insert--
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:insert]...)
	out = append(out, "* "+text)
	out = append(out, lines[insert:]...)
	return strings.Join(out, "\n"), nil
}

// removeItemLine deletes the first bullet in the container's section whose
// text contains match, case-insensitively. Removing a top-level bullet
// also removes its indented continuation bullets; removing an indented
// bullet takes only that line. Returns the new source and the removed
// bullet text.
func removeItemLine(source, containerID, match string) (string, string, error) {
	lines := strings.Split(source, "\n")
	start, end, err := sectionBounds(lines, containerID)
	if err != nil {
		return "", "", err
	}

	needle := strings.ToLower(match)
	for i := start; i < end; i++ {
		var indented bool
		switch {
		case strings.HasPrefix(lines[i], "* "):
		case strings.HasPrefix(lines[i], "  * "):
			indented = true
		default:
			continue
		}
		if !strings.Contains(strings.ToLower(lines[i]), needle) {
			continue
		}
		removed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[i]), "* "))

		out := make([]string, 0, len(lines)-1)
		out = append(out, lines[:i]...)
		// Indented continuation bullets belong to the removed item.
		j := i + 1
		if !indented {
			for j < end && strings.HasPrefix(lines[j], "  * ") {
				j++
			}
		}
		out = append(out, lines[j:]...)
		return strings.Join(out, "\n"), removed, nil
	}
	return "", "", fmt.Errorf("inventoryservice: no item matching %q in %s: %w", match, containerID, apperr.ErrNotFound)
}
