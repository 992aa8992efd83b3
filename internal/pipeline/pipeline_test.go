package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wverbeek/gamewire/internal/config"
	"github.com/wverbeek/gamewire/internal/database"
)

// mockProvider returns canned generation responses.
type mockProvider struct {
	calls    int
	generate func(call int, user string) (string, error)
}

func (m *mockProvider) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	m.calls++
	return m.generate(m.calls, user)
}

func (m *mockProvider) IsConfigured() bool { return true }

// grammarResponse builds a well-formed generation response.
func grammarResponse(title string) string {
	return fmt.Sprintf(`TITEL: %s
EXCERPT: korte samenvatting van het nieuws
IMAGE_PROMPT: a video game scene
---
De inhoud van het artikel.

## Achtergrond

Meer tekst.`, title)
}

// longSnippet is long enough that the pipeline skips content enrichment.
var longSnippet = strings.Repeat("Uitgebreide beschrijving van het nieuws. ", 10)

func feedDoc(items ...[3]string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Test</title>`)
	for _, it := range items {
		fmt.Fprintf(&sb, `<item><title>%s</title><link>%s</link><guid>%s</guid><description>%s</description></item>`,
			it[0], it[1], it[2], longSnippet)
	}
	sb.WriteString(`</channel></rss>`)
	return sb.String()
}

func serveFeed(t *testing.T, doc string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRunner(t *testing.T, feedURL string, provider *mockProvider) (*Runner, *database.DB, *int) {
	t.Helper()
	cfg := &config.Config{
		Pacing: config.Pacing{MinDelaySeconds: 0, MaxDelaySeconds: 0},
	}
	if feedURL != "" {
		cfg.Sources.Feeds = []config.Feed{{URL: feedURL, Name: "Test Feed", Language: "nl"}}
	}

	db := openTestDB(t)
	r := New(cfg, db, provider, nil)

	sleeps := 0
	r.sleep = func(time.Duration) { sleeps++ }
	r.now = func() time.Time {
		// A Wednesday at noon, well inside publishing hours.
		return time.Date(2026, 3, 4, 12, 15, 0, 0, time.Local)
	}
	return r, db, &sleeps
}

func TestScanPublishes(t *testing.T) {
	srv := serveFeed(t, feedDoc(
		[3]string{"Silksong krijgt releasedatum", "https://example.com/silksong", "g1"},
		[3]string{"Mario Kart 9 aangekondigd", "https://example.com/mariokart", "g2"},
	))
	provider := &mockProvider{generate: func(call int, user string) (string, error) {
		return grammarResponse(fmt.Sprintf("Artikel nummer %d", call)), nil
	}}
	r, db, sleeps := testRunner(t, srv.URL, provider)

	result, err := r.Scan(context.Background(), false, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Skipped {
		t.Fatalf("unexpected skip: %s", result.Reason)
	}
	if result.Fetched != 2 || result.Candidates != 2 {
		t.Errorf("fetched = %d, candidates = %d", result.Fetched, result.Candidates)
	}
	if got := result.Published(); got != 2 {
		t.Fatalf("published = %d, want 2; items: %+v", got, result.Items)
	}
	if *sleeps != 1 {
		t.Errorf("sleeps = %d, want 1 (between items, not before the first)", *sleeps)
	}

	a, err := db.GetArticleBySlug("artikel-nummer-1")
	if err != nil || a == nil {
		t.Fatalf("expected stored article, got %v, %v", a, err)
	}
	if a.OriginalURL == nil || *a.OriginalURL != "https://example.com/silksong" {
		t.Errorf("originalURL = %v", a.OriginalURL)
	}
	if a.BodyHTML == "" || !strings.Contains(a.BodyHTML, "<h2") {
		t.Errorf("expected rendered HTML body, got %q", a.BodyHTML)
	}
}

func TestScanSkipsAtNight(t *testing.T) {
	provider := &mockProvider{generate: func(int, string) (string, error) {
		t.Error("no generation should happen during night mode")
		return "", nil
	}}
	r, _, _ := testRunner(t, "", provider)
	r.now = func() time.Time {
		return time.Date(2026, 3, 4, 23, 30, 0, 0, time.Local)
	}

	result, err := r.Scan(context.Background(), false, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !result.Skipped || result.Reason != "night mode" {
		t.Errorf("expected night-mode skip, got %+v", result)
	}
}

func TestScanForceBypassesNight(t *testing.T) {
	srv := serveFeed(t, feedDoc(
		[3]string{"Silksong krijgt releasedatum", "https://example.com/silksong", "g1"},
		[3]string{"Mario Kart 9 aangekondigd", "https://example.com/mariokart", "g2"},
	))
	provider := &mockProvider{generate: func(call int, user string) (string, error) {
		return grammarResponse(fmt.Sprintf("Geforceerd artikel %d", call)), nil
	}}
	r, _, _ := testRunner(t, srv.URL, provider)
	r.now = func() time.Time {
		return time.Date(2026, 3, 1, 2, 0, 0, 0, time.Local) // Sunday 02:00
	}

	result, err := r.Scan(context.Background(), true, 1)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Skipped {
		t.Fatalf("force scan skipped: %s", result.Reason)
	}
	if result.Budget.MaxThisRun != 1 {
		t.Errorf("budget maxThisRun = %d, want 1", result.Budget.MaxThisRun)
	}
	if got := result.Published(); got != 1 {
		t.Errorf("published = %d, want exactly the forced count", got)
	}
}

func TestScanSkipsKnownURLs(t *testing.T) {
	srv := serveFeed(t, feedDoc(
		[3]string{"Silksong krijgt releasedatum", "https://example.com/silksong", "g1"},
		[3]string{"Mario Kart 9 aangekondigd", "https://example.com/mariokart", "g2"},
	))
	provider := &mockProvider{generate: func(call int, user string) (string, error) {
		return grammarResponse(fmt.Sprintf("Nieuw artikel %d", call)), nil
	}}
	r, db, _ := testRunner(t, srv.URL, provider)

	// The first item was already published in an earlier run.
	url := "https://example.com/silksong"
	_, err := db.InsertArticle(&database.Article{
		Slug: "eerder-gepubliceerd", Title: "Heel ander onderwerp", Category: "news",
		BodyMarkdown: "x", BodyHTML: "<p>x</p>", OriginalURL: &url,
		PublishedAt: "2026-03-03T10:00:00+01:00", PublishedDay: "2026-03-03",
	})
	if err != nil {
		t.Fatal(err)
	}

	result, err := r.Scan(context.Background(), false, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Candidates != 1 {
		t.Errorf("candidates = %d, want 1 after exact dedup", result.Candidates)
	}
	if got := result.Published(); got != 1 {
		t.Errorf("published = %d, want 1", got)
	}
}

func TestScanDropsRegionLockedItems(t *testing.T) {
	srv := serveFeed(t, feedDoc(
		[3]string{"Black Friday deal only at Best Buy and GameStop", "https://example.com/deal", "g1"},
	))
	provider := &mockProvider{generate: func(int, string) (string, error) {
		t.Error("region-locked items must not reach generation")
		return "", nil
	}}
	r, _, _ := testRunner(t, srv.URL, provider)

	result, err := r.Scan(context.Background(), false, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Fetched != 1 {
		t.Errorf("fetched = %d, want 1", result.Fetched)
	}
	if result.Candidates != 0 {
		t.Errorf("candidates = %d, want 0", result.Candidates)
	}
}

func TestScanSlugCollisionIsPerItemError(t *testing.T) {
	srv := serveFeed(t, feedDoc(
		[3]string{"Silksong krijgt releasedatum", "https://example.com/silksong", "g1"},
		[3]string{"Mario Kart 9 aangekondigd", "https://example.com/mariokart", "g2"},
	))
	// The model returns the identical title twice, so both items map to
	// the same slug.
	provider := &mockProvider{generate: func(int, string) (string, error) {
		return grammarResponse("Hetzelfde artikel"), nil
	}}
	r, _, _ := testRunner(t, srv.URL, provider)

	result, err := r.Scan(context.Background(), false, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := result.Published(); got != 1 {
		t.Fatalf("published = %d, want 1", got)
	}
	if len(result.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(result.Items))
	}
	second := result.Items[1]
	if second.Status != "error" || !strings.Contains(second.Error, "slug already published") {
		t.Errorf("expected slug collision error, got %+v", second)
	}
}

func TestScanGenerationFailureIsolated(t *testing.T) {
	srv := serveFeed(t, feedDoc(
		[3]string{"Silksong krijgt releasedatum", "https://example.com/silksong", "g1"},
		[3]string{"Mario Kart 9 aangekondigd", "https://example.com/mariokart", "g2"},
	))
	provider := &mockProvider{generate: func(call int, user string) (string, error) {
		if call == 1 {
			return "", fmt.Errorf("upstream timeout")
		}
		return grammarResponse("Tweede artikel"), nil
	}}
	r, _, _ := testRunner(t, srv.URL, provider)

	result, err := r.Scan(context.Background(), false, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := result.Published(); got != 1 {
		t.Errorf("published = %d, want the second item to still go out", got)
	}
	if result.Items[0].Status != "error" {
		t.Errorf("first item = %+v, want error", result.Items[0])
	}
}

func TestScanEmptyBodyRejected(t *testing.T) {
	srv := serveFeed(t, feedDoc(
		[3]string{"Silksong krijgt releasedatum", "https://example.com/silksong", "g1"},
	))
	provider := &mockProvider{generate: func(int, string) (string, error) {
		return "TITEL: Alleen een titel\n---\n", nil
	}}
	r, db, _ := testRunner(t, srv.URL, provider)

	result, err := r.Scan(context.Background(), false, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := result.Published(); got != 0 {
		t.Errorf("published = %d, want 0 for empty body", got)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalArticles != 0 {
		t.Errorf("totalArticles = %d, want 0", stats.TotalArticles)
	}
}

func TestPodcastScanNoActiveShows(t *testing.T) {
	provider := &mockProvider{generate: func(int, string) (string, error) { return "", nil }}
	r, _, _ := testRunner(t, "", provider)

	result, err := r.PodcastScan(context.Background())
	if err != nil {
		t.Fatalf("PodcastScan: %v", err)
	}
	if !result.Skipped {
		t.Error("expected skip without active shows")
	}
}

func TestPodcastScanPublishesEpisode(t *testing.T) {
	srv := serveFeed(t, feedDoc(
		[3]string{"Game Kast #42", "https://podcast.example/42", "episode-guid-42"},
	))
	provider := &mockProvider{generate: func(int, string) (string, error) {
		return grammarResponse("Game Kast aflevering 42"), nil
	}}
	r, db, _ := testRunner(t, "", provider)
	r.cfg.Shows = []config.Show{{
		Name: "Game Kast", FeedURL: srv.URL, Active: true,
	}}

	result, err := r.PodcastScan(context.Background())
	if err != nil {
		t.Fatalf("PodcastScan: %v", err)
	}
	if got := result.Published(); got != 1 {
		t.Fatalf("published = %d, want 1; items: %+v", got, result.Items)
	}

	a, err := db.GetArticleBySlug("game-kast-aflevering-42")
	if err != nil || a == nil {
		t.Fatalf("expected stored episode, got %v, %v", a, err)
	}
	if a.Category != "podcast" {
		t.Errorf("category = %q, want podcast", a.Category)
	}
	if a.PodcastGUID == nil || *a.PodcastGUID != "episode-guid-42" {
		t.Errorf("podcastGUID = %v", a.PodcastGUID)
	}
	if a.YouTubeURL != nil {
		t.Errorf("expected no video match without a channel, got %v", *a.YouTubeURL)
	}

	// A second run sees the GUID and publishes nothing.
	result, err = r.PodcastScan(context.Background())
	if err != nil {
		t.Fatalf("second PodcastScan: %v", err)
	}
	if result.Candidates != 0 || result.Published() != 0 {
		t.Errorf("second run should be a no-op, got %+v", result)
	}
}

func TestPodcastScanIsolatesBrokenShow(t *testing.T) {
	good := serveFeed(t, feedDoc(
		[3]string{"Game Kast #43", "https://podcast.example/43", "episode-guid-43"},
	))
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(bad.Close)

	provider := &mockProvider{generate: func(int, string) (string, error) {
		return grammarResponse("Game Kast aflevering 43"), nil
	}}
	r, _, _ := testRunner(t, "", provider)
	r.cfg.Shows = []config.Show{
		{Name: "Kapotte Show", FeedURL: bad.URL, Active: true},
		{Name: "Game Kast", FeedURL: good.URL, Active: true},
	}

	result, err := r.PodcastScan(context.Background())
	if err != nil {
		t.Fatalf("PodcastScan: %v", err)
	}
	if got := result.Published(); got != 1 {
		t.Errorf("published = %d, want the healthy show to still deliver", got)
	}
}

func TestScanWithoutProvider(t *testing.T) {
	r, _, _ := testRunner(t, "", nil)
	r.provider = nil
	if _, err := r.Scan(context.Background(), false, 0); err == nil {
		t.Error("expected an error without a provider")
	}
	if _, err := r.PodcastScan(context.Background()); err == nil {
		t.Error("expected an error without a provider")
	}
}
