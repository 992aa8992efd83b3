// Package notify fires best-effort side effects after publication:
// the image-generation webhook, search-engine sitemap pings, and
// IndexNow submissions. Nothing here ever returns an error; failures
// are logged and the pipeline moves on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Config holds the side-channel endpoints. Empty fields disable the
// corresponding channel.
type Config struct {
	ImageWebhookURL string
	SiteBaseURL     string
	SitemapPingURLs []string
	IndexNowKey     string
	IndexNowURL     string
}

// Notifier sends fire-and-forget notifications.
type Notifier struct {
	cfg    Config
	client *http.Client
}

// New creates a Notifier with a short timeout; a slow side channel must
// not eat the run's wall-clock budget.
func New(cfg Config) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// ImageJob asks the image service to generate a header image for a
// freshly published article.
func (n *Notifier) ImageJob(ctx context.Context, slug, prompt string) {
	if n.cfg.ImageWebhookURL == "" || prompt == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"slug":   slug,
		"prompt": prompt,
	})
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.ImageWebhookURL, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("image job for %s not accepted: %v", slug, err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("image job for %s returned %d", slug, resp.StatusCode)
	}
}

// PingSearchEngines notifies search engines that the sitemap changed.
func (n *Notifier) PingSearchEngines(ctx context.Context) {
	if n.cfg.SiteBaseURL == "" {
		return
	}
	sitemap := n.cfg.SiteBaseURL + "/sitemap.xml"

	for _, ping := range n.cfg.SitemapPingURLs {
		target := ping + url.QueryEscape(sitemap)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			continue
		}
		resp, err := n.client.Do(req)
		if err != nil {
			log.Printf("sitemap ping failed: %v", err)
			continue
		}
		resp.Body.Close()
	}
}

// SubmitIndexNow submits freshly published URLs to an IndexNow
// endpoint.
func (n *Notifier) SubmitIndexNow(ctx context.Context, urls []string) {
	if n.cfg.IndexNowURL == "" || n.cfg.IndexNowKey == "" || len(urls) == 0 {
		return
	}

	host := n.cfg.SiteBaseURL
	if u, err := url.Parse(n.cfg.SiteBaseURL); err == nil && u.Host != "" {
		host = u.Host
	}

	payload, err := json.Marshal(map[string]any{
		"host":    host,
		"key":     n.cfg.IndexNowKey,
		"urlList": urls,
	})
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.IndexNowURL, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("IndexNow submission failed: %v", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("IndexNow returned %d", resp.StatusCode)
	}
}
