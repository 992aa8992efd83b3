// Package fetch pulls full article text from a candidate's source page
// when the feed snippet is too thin to generate from.
package fetch

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	// minSnippetLen is the snippet length below which enrichment is
	// attempted before generation.
	minSnippetLen = 300

	// maxSourceText caps how much extracted text is handed to the
	// generation prompt.
	maxSourceText = 6000
)

// ContentFetcher fetches page text via HTTP + readability extraction.
// One instance lives for a single run; failed domains are remembered so
// a dead site costs at most one timeout.
type ContentFetcher struct {
	client        *http.Client
	failedDomains map[string]struct{}
}

// NewContentFetcher creates a new content fetcher.
func NewContentFetcher(timeout time.Duration) *ContentFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ContentFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		failedDomains: make(map[string]struct{}),
	}
}

// NeedsEnrichment reports whether a snippet is too short to generate a
// full article from.
func (f *ContentFetcher) NeedsEnrichment(snippet string) bool {
	return len(snippet) < minSnippetLen
}

// Enrich returns the readable text of the source page, or the original
// snippet when fetching or extraction fails. Enrichment is best-effort;
// it never fails the item.
func (f *ContentFetcher) Enrich(pageURL, snippet string) string {
	u, _ := url.Parse(pageURL)
	domain := ""
	if u != nil {
		domain = strings.ToLower(u.Host)
	}

	if _, failed := f.failedDomains[domain]; failed {
		return snippet
	}

	text, err := f.fetchPageText(pageURL)
	if err != nil {
		if domain != "" {
			f.failedDomains[domain] = struct{}{}
		}
		log.Printf("enrichment failed for %s: %v", pageURL, err)
		return snippet
	}
	if text == "" {
		return snippet
	}
	if len(text) > maxSourceText {
		text = text[:maxSourceText]
	}
	return text
}

func (f *ContentFetcher) fetchPageText(pageURL string) (string, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "gamewire/1.0 (content fetcher)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > 100 {
		return text, nil
	}
	return "", nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
