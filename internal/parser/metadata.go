package parser

import (
	"regexp"
	"strings"

	"github.com/eivindn/inventar/internal/models"
)

var (
	// metaRe matches one inline annotation: key:value or (key:value).
	// The value runs to the next whitespace or closing parenthesis.
	metaRe  = regexp.MustCompile(`\(?([\p{L}\p{N}_]+):([^)\s]+)\)?`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// ExtractMetadata pulls every inline key:value annotation out of text and
// returns the metadata together with the cleaned display name. Keys are
// lowercased; a repeated key keeps the last value. The special key "tag"
// splits its value on commas and appends the non-empty pieces to the tag
// list, duplicates included. Matched spans are removed from the text in
// reverse position order so earlier removals do not shift later offsets;
// the remainder has whitespace runs collapsed and is trimmed.
func ExtractMetadata(text string) (models.Metadata, string) {
	var md models.Metadata

	matches := metaRe.FindAllStringSubmatchIndex(text, -1)
	for _, m := range matches {
		key := strings.ToLower(text[m[2]:m[3]])
		value := strings.TrimSpace(text[m[4]:m[5]])
		if key == "tag" {
			for _, piece := range strings.Split(value, ",") {
				if piece = strings.TrimSpace(piece); piece != "" {
					md.Tags = append(md.Tags, piece)
				}
			}
			continue
		}
		md.Set(key, value)
	}

	name := text
	for i := len(matches) - 1; i >= 0; i-- {
		name = name[:matches[i][0]] + name[matches[i][1]:]
	}
	name = strings.TrimSpace(spaceRe.ReplaceAllString(name, " "))

	return md, name
}
