package compose

import (
	"regexp"
	"strings"
)

const maxSlugLen = 96

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe    = regexp.MustCompile(`\s+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// Slugify derives the document slug from a title: lowercase, strip
// punctuation, hyphenate whitespace, collapse repeats, cap at 96 chars.
// The CMS keys documents by this value, so the transformation must stay
// stable across releases.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	return strings.Trim(s, "-")
}
