// Package pipeline wires the scan together: fetch feeds, prune,
// classify, apply the run budget, and materialize the surviving
// candidates into published articles one at a time.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/wverbeek/gamewire/internal/classify"
	"github.com/wverbeek/gamewire/internal/compose"
	"github.com/wverbeek/gamewire/internal/config"
	"github.com/wverbeek/gamewire/internal/database"
	"github.com/wverbeek/gamewire/internal/dedupe"
	"github.com/wverbeek/gamewire/internal/feeds"
	"github.com/wverbeek/gamewire/internal/fetch"
	"github.com/wverbeek/gamewire/internal/llm"
	"github.com/wverbeek/gamewire/internal/notify"
	"github.com/wverbeek/gamewire/internal/schedule"
)

// ItemResult records the outcome for one candidate.
type ItemResult struct {
	Title    string `json:"title"`
	Source   string `json:"source,omitempty"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status"` // "ok" or "error"
	Slug     string `json:"slug,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Result summarizes a scan run. A skipped run (night mode, daily max)
// is not an error: Skipped is set with a human-readable reason.
type Result struct {
	Skipped    bool            `json:"skipped"`
	Reason     string          `json:"reason,omitempty"`
	Fetched    int             `json:"fetched"`
	Candidates int             `json:"candidates"`
	Budget     schedule.Budget `json:"budget"`
	Items      []ItemResult    `json:"items"`
}

// Published returns how many items ended with status ok.
func (r *Result) Published() int {
	n := 0
	for _, it := range r.Items {
		if it.Status == "ok" {
			n++
		}
	}
	return n
}

// Runner executes scan runs. Article generation is strictly
// sequential: each successful publication updates the in-run known-set
// before the next candidate is considered.
type Runner struct {
	cfg      *config.Config
	db       *database.DB
	provider llm.Provider
	notifier *notify.Notifier

	// Injection points for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Runner.
func New(cfg *config.Config, db *database.DB, provider llm.Provider, notifier *notify.Notifier) *Runner {
	return &Runner{
		cfg:      cfg,
		db:       db,
		provider: provider,
		notifier: notifier,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Scan runs the full news scan. force bypasses admission control with
// a cap of forceCount articles.
func (r *Runner) Scan(ctx context.Context, force bool, forceCount int) (*Result, error) {
	if r.provider == nil {
		return nil, fmt.Errorf("no generation provider configured")
	}

	now := r.now()
	todayCount, err := r.db.CountPublishedOn(database.LocalDay(now))
	if err != nil {
		return nil, fmt.Errorf("counting today's articles: %w", err)
	}

	budget := schedule.ComputeRunBudget(now, todayCount, force, forceCount)
	if !budget.Allowed {
		log.Printf("scan skipped: %s", budget.Reason)
		return &Result{Skipped: true, Reason: budget.Reason, Budget: budget}, nil
	}

	fetcher := feeds.NewFetcher()
	sources := make([]feeds.Source, len(r.cfg.Sources.Feeds))
	for i, f := range r.cfg.Sources.Feeds {
		sources[i] = feeds.Source{Name: f.Name, URL: f.URL, Language: f.Language}
	}
	items := fetcher.ItemsAll(ctx, sources)

	result := &Result{Fetched: len(items), Budget: budget}

	var regional []feeds.Item
	for _, it := range items {
		if classify.RegionLocked(it.Title, it.Snippet) {
			log.Printf("region-locked, dropping: %s", it.Title)
			continue
		}
		regional = append(regional, it)
	}

	known, err := r.loadKnown()
	if err != nil {
		return nil, err
	}

	candidates := dedupe.FilterNew(regional, known)
	result.Candidates = len(candidates)

	if len(candidates) > budget.MaxThisRun {
		candidates = candidates[:budget.MaxThisRun]
	}
	log.Printf("scan: %d fetched, %d new, publishing up to %d", result.Fetched, result.Candidates, len(candidates))

	enricher := fetch.NewContentFetcher(0)
	var publishedURLs []string

	for i, cand := range candidates {
		if i > 0 {
			r.sleep(r.pacingDelay())
		}

		item := r.publishCandidate(ctx, cand, known, enricher)
		result.Items = append(result.Items, item)
		if item.Status == "ok" && r.cfg.Site.BaseURL != "" {
			publishedURLs = append(publishedURLs, r.cfg.Site.BaseURL+"/artikel/"+item.Slug)
		}
	}

	if len(publishedURLs) > 0 && r.notifier != nil {
		r.notifier.PingSearchEngines(ctx)
		r.notifier.SubmitIndexNow(ctx, publishedURLs)
	}

	log.Printf("scan complete: %d published, %d errors", result.Published(), len(result.Items)-result.Published())
	return result, nil
}

// publishCandidate runs one candidate through classification,
// enrichment, generation, and persistence. A failure is recorded on the
// item and never aborts the batch.
func (r *Runner) publishCandidate(ctx context.Context, cand feeds.Item, known *dedupe.Known, enricher *fetch.ContentFetcher) ItemResult {
	category := classify.Detect(cand.Title, cand.Snippet)
	item := ItemResult{Title: cand.Title, Source: cand.Source, Category: string(category)}

	content := cand.Snippet
	if cand.Link != "" && enricher.NeedsEnrichment(content) {
		content = enricher.Enrich(cand.Link, content)
	}

	system, user := compose.Prompts(compose.Request{
		Title:    cand.Title,
		Content:  content,
		Source:   cand.Source,
		Category: category,
	})

	raw, err := r.provider.Generate(ctx, system, user, compose.MaxTokens())
	if err != nil {
		item.Status = "error"
		item.Error = fmt.Sprintf("generation failed: %v", err)
		log.Printf("generation failed for %q: %v", cand.Title, err)
		return item
	}

	article := compose.Parse(raw, cand.Title)
	if article.Body == "" {
		item.Status = "error"
		item.Error = "generation returned empty body"
		return item
	}

	slug := compose.Slugify(article.Title)
	if existing, err := r.db.GetArticleBySlug(slug); err != nil {
		item.Status = "error"
		item.Error = fmt.Sprintf("slug lookup failed: %v", err)
		return item
	} else if existing != nil {
		item.Status = "error"
		item.Error = fmt.Sprintf("slug already published: %s", slug)
		return item
	}

	record := r.newRecord(article, slug, category, cand)
	if _, err := r.db.InsertArticle(record); err != nil {
		// The known-set is deliberately not updated here: a failed
		// write must not suppress a retry of the same URL.
		item.Status = "error"
		item.Error = fmt.Sprintf("persist failed: %v", err)
		log.Printf("persist failed for %q: %v", cand.Title, err)
		return item
	}

	known.Add(cand.Link, cand.GUID, article.Title)

	if r.notifier != nil {
		r.notifier.ImageJob(ctx, slug, article.ImagePrompt)
	}

	item.Status = "ok"
	item.Slug = slug
	log.Printf("published [%s] %s", category, slug)
	return item
}

func (r *Runner) newRecord(article compose.Article, slug string, category classify.Category, cand feeds.Item) *database.Article {
	now := r.now()
	record := &database.Article{
		Slug:         slug,
		Title:        article.Title,
		Category:     string(category),
		Excerpt:      article.Excerpt,
		BodyMarkdown: article.Body,
		BodyHTML:     compose.RenderHTML(article.Body),
		PublishedAt:  now.Format(time.RFC3339),
		PublishedDay: database.LocalDay(now),
	}
	if article.ImagePrompt != "" {
		record.ImagePrompt = &article.ImagePrompt
	}
	if cand.Link != "" {
		link := cand.Link
		record.OriginalURL = &link
	}
	if cand.Source != "" {
		source := cand.Source
		record.Source = &source
	}
	if article.HasScore && category == classify.CategoryReview {
		score := article.Score
		record.Score = &score
	}
	return record
}

func (r *Runner) loadKnown() (*dedupe.Known, error) {
	keys, err := r.db.KnownSourceKeys()
	if err != nil {
		return nil, fmt.Errorf("loading known source keys: %w", err)
	}
	titles, err := r.db.RecentTitles(dedupe.RecentTitleWindow)
	if err != nil {
		return nil, fmt.Errorf("loading recent titles: %w", err)
	}
	return dedupe.NewKnown(keys, titles), nil
}

// pacingDelay returns the randomized delay between generation calls.
func (r *Runner) pacingDelay() time.Duration {
	min := r.cfg.Pacing.MinDelaySeconds
	max := r.cfg.Pacing.MaxDelaySeconds
	if max <= min {
		return time.Duration(min) * time.Second
	}
	return time.Duration(min+rand.Intn(max-min+1)) * time.Second
}
