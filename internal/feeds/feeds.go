// Package feeds pulls candidate items from configured RSS sources and
// video listings from YouTube channel feeds. A failing source is logged
// and skipped; it never aborts the scan.
package feeds

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	maxPerFeed     = 25
	requestTimeout = 12 * time.Second
	userAgent      = "gamewire/1.0 (+https://gamewire.example; feed scanner)"
)

// Source is a configured external feed.
type Source struct {
	Name     string
	URL      string
	Language string
}

// Item is a feed entry before any dedup or classification.
type Item struct {
	Title     string
	Link      string
	GUID      string
	Snippet   string
	Published time.Time
	Source    string
}

// Fetcher retrieves feeds and channel listings. One Fetcher is meant to
// live for a single run; the channel cache does not outlast it.
type Fetcher struct {
	parser   *gofeed.Parser
	client   *http.Client
	channels map[string][]Video
}

// NewFetcher creates a Fetcher with per-request timeouts.
func NewFetcher() *Fetcher {
	client := &http.Client{Timeout: requestTimeout}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &Fetcher{
		parser:   parser,
		client:   client,
		channels: make(map[string][]Video),
	}
}

// Items fetches and normalizes entries from one source. Entries missing
// a title or any usable key are discarded.
func (f *Fetcher) Items(ctx context.Context, src Source) ([]Item, error) {
	feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, entry := range feed.Items {
		if len(items) >= maxPerFeed {
			break
		}
		item, ok := normalizeItem(entry, src.Name)
		if ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// ItemsAll fetches every source, isolating failures per source.
func (f *Fetcher) ItemsAll(ctx context.Context, sources []Source) []Item {
	var all []Item
	for _, src := range sources {
		items, err := f.Items(ctx, src)
		if err != nil {
			log.Printf("source %s unavailable: %v", src.Name, err)
			continue
		}
		log.Printf("fetched %d items from %s", len(items), src.Name)
		all = append(all, items...)
	}
	return all
}

func normalizeItem(entry *gofeed.Item, source string) (Item, bool) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return Item{}, false
	}
	link := strings.TrimSpace(entry.Link)
	guid := strings.TrimSpace(entry.GUID)
	if link == "" && guid == "" {
		return Item{}, false
	}

	var published time.Time
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}

	snippet := entry.Content
	if snippet == "" {
		snippet = entry.Description
	}

	return Item{
		Title:     title,
		Link:      link,
		GUID:      guid,
		Snippet:   stripHTML(snippet),
		Published: published,
		Source:    source,
	}, true
}

// stripHTML removes tags and decodes common entities from a snippet.
func stripHTML(text string) string {
	var b strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	s := b.String()
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	return strings.Join(strings.Fields(s), " ")
}
