package compose

import (
	"regexp"
	"strconv"
	"strings"
)

const maxExcerptLen = 200

var (
	titleRe   = regexp.MustCompile(`(?m)^\s*TITEL:\s*(.+)$`)
	excerptRe = regexp.MustCompile(`(?m)^\s*EXCERPT:\s*(.+)$`)
	imageRe   = regexp.MustCompile(`(?m)^\s*IMAGE_PROMPT:\s*(.+)$`)
	scoreRe   = regexp.MustCompile(`(?m)^\s*SCORE:\s*(\d{1,3})\s*$`)
	headingRe = regexp.MustCompile(`(?m)^##\s+(.+)$`)

	// metadataLineRe strips stray metadata the model sometimes repeats
	// inside the body.
	metadataLineRe = regexp.MustCompile(`^\s*(TITEL|EXCERPT|IMAGE_PROMPT|SCORE):`)
)

// Article is the parsed generation response.
type Article struct {
	Title       string
	Excerpt     string
	ImagePrompt string
	Score       int
	HasScore    bool
	Body        string
}

// Parse extracts article fields from a raw completion. Parsing is
// tolerant: a missing TITEL falls back to the first ## heading and then
// to fallbackTitle, a missing EXCERPT yields an empty string, and the
// body is everything after the first --- separator with stray metadata
// lines removed.
func Parse(raw, fallbackTitle string) Article {
	raw = strings.TrimSpace(raw)
	a := Article{}

	if m := titleRe.FindStringSubmatch(raw); m != nil {
		a.Title = strings.TrimSpace(m[1])
	}
	if m := excerptRe.FindStringSubmatch(raw); m != nil {
		a.Excerpt = truncate(strings.TrimSpace(m[1]), maxExcerptLen)
	}
	if m := imageRe.FindStringSubmatch(raw); m != nil {
		a.ImagePrompt = strings.TrimSpace(m[1])
	}
	if m := scoreRe.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 100 {
			a.Score = n
			a.HasScore = true
		}
	}

	a.Body = extractBody(raw)

	if a.Title == "" {
		if m := headingRe.FindStringSubmatch(a.Body); m != nil {
			a.Title = strings.TrimSpace(m[1])
		}
	}
	if a.Title == "" {
		a.Title = fallbackTitle
	}

	return a
}

// extractBody returns everything after the first --- line. Without a
// separator the whole text minus metadata lines is used.
func extractBody(raw string) string {
	lines := strings.Split(raw, "\n")
	start := 0
	found := false
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			start = i + 1
			found = true
			break
		}
	}
	if !found {
		start = 0
	}

	var kept []string
	for _, line := range lines[start:] {
		if metadataLineRe.MatchString(line) {
			continue
		}
		if !found && strings.TrimSpace(line) == "---" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
