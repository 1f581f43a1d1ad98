package parser

import "strings"

// HeadingID reports the container id the given source line would open.
// Reserved section markers, malformed level-1 markers, and overview
// headings without a resolvable id return ok=false. This mirrors the
// walker's classification and exists so editing code can find a
// container's section in the raw text without a full parse.
func HeadingID(line string) (id string, level int, ok bool) {
	level, rest, isHeading := classifyHeading(line)
	if !isHeading {
		return "", 0, false
	}

	if level == 1 {
		switch {
		case !strings.HasPrefix(line, "# "):
			return "", 0, false
		case strings.HasPrefix(line, introMarker), strings.HasPrefix(line, numberingMarker):
			return "", 0, false
		case strings.HasPrefix(line, "# ID:") ||
			(strings.HasPrefix(line, overviewMarker) && strings.Contains(line, "ID:")):
			md, _ := ExtractMetadata(rest)
			if id := md.Get("id"); id != "" {
				return id, 1, true
			}
			return "", 0, false
		}
	}

	md, name := ExtractMetadata(rest)
	if id := md.Get("id"); id != "" {
		return id, level, true
	}
	return sanitizeID(headingText(name, rest), level), level, true
}

// IsSectionBoundary reports whether line ends the body of the container
// section preceding it: any heading-grade marker run does, including
// reserved section markers and malformed level-1 markers.
func IsSectionBoundary(line string) bool {
	_, _, isHeading := classifyHeading(line)
	return isHeading
}

// IsReservedSectionStart reports whether line opens one of the verbatim
// Intro/Nummereringsregime sections. Their bodies run until the next
// level-1 heading, and heading-like lines inside them are plain text.
func IsReservedSectionStart(line string) bool {
	return strings.HasPrefix(line, introMarker) || strings.HasPrefix(line, numberingMarker)
}
