package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/wverbeek/gamewire/internal/classify"
	"github.com/wverbeek/gamewire/internal/compose"
	"github.com/wverbeek/gamewire/internal/config"
	"github.com/wverbeek/gamewire/internal/dedupe"
	"github.com/wverbeek/gamewire/internal/feeds"
	"github.com/wverbeek/gamewire/internal/match"
)

// PodcastScan publishes new episodes of every active show. Episodes
// are deduplicated by GUID and matched against the show's YouTube
// uploads so the article can embed the video. Podcast episodes bypass
// admission control: an episode that exists must be published.
func (r *Runner) PodcastScan(ctx context.Context) (*Result, error) {
	if r.provider == nil {
		return nil, fmt.Errorf("no generation provider configured")
	}

	shows := r.cfg.ActiveShows()
	if len(shows) == 0 {
		return &Result{Skipped: true, Reason: "no active shows configured"}, nil
	}

	known, err := r.loadKnown()
	if err != nil {
		return nil, err
	}

	fetcher := feeds.NewFetcher()
	result := &Result{}
	var publishedURLs []string

	for _, show := range shows {
		episodes, err := fetcher.Items(ctx, feeds.Source{Name: show.Name, URL: show.FeedURL})
		if err != nil {
			log.Printf("show %s unavailable: %v", show.Name, err)
			continue
		}
		result.Fetched += len(episodes)

		for _, ep := range episodes {
			if known.HasKey(ep.GUID) || known.HasKey(ep.Link) {
				continue
			}
			result.Candidates++

			if len(result.Items) > 0 {
				r.sleep(r.pacingDelay())
			}

			item := r.publishEpisode(ctx, show, ep, known, fetcher)
			result.Items = append(result.Items, item)
			if item.Status == "ok" && r.cfg.Site.BaseURL != "" {
				publishedURLs = append(publishedURLs, r.cfg.Site.BaseURL+"/artikel/"+item.Slug)
			}
		}
	}

	if len(publishedURLs) > 0 && r.notifier != nil {
		r.notifier.PingSearchEngines(ctx)
		r.notifier.SubmitIndexNow(ctx, publishedURLs)
	}

	log.Printf("podcast scan complete: %d published, %d errors", result.Published(), len(result.Items)-result.Published())
	return result, nil
}

func (r *Runner) publishEpisode(ctx context.Context, show config.Show, ep feeds.Item, known *dedupe.Known, fetcher *feeds.Fetcher) ItemResult {
	item := ItemResult{Title: ep.Title, Source: show.Name, Category: string(classify.CategoryPodcast)}

	videoURL := r.matchEpisodeVideo(ctx, show, ep, fetcher)

	system, user := compose.Prompts(compose.Request{
		Title:    ep.Title,
		Content:  ep.Snippet,
		Source:   show.Name,
		Category: classify.CategoryPodcast,
	})

	raw, err := r.provider.Generate(ctx, system, user, compose.MaxTokens())
	if err != nil {
		item.Status = "error"
		item.Error = fmt.Sprintf("generation failed: %v", err)
		return item
	}

	article := compose.Parse(raw, ep.Title)
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

	record := r.newRecord(article, slug, classify.CategoryPodcast, ep)
	if ep.GUID != "" {
		guid := ep.GUID
		record.PodcastGUID = &guid
	}
	if videoURL != "" {
		record.YouTubeURL = &videoURL
	}

	if _, err := r.db.InsertArticle(record); err != nil {
		item.Status = "error"
		item.Error = fmt.Sprintf("persist failed: %v", err)
		return item
	}

	known.Add(ep.Link, ep.GUID, article.Title)

	if r.notifier != nil {
		r.notifier.ImageJob(ctx, slug, article.ImagePrompt)
	}

	item.Status = "ok"
	item.Slug = slug
	log.Printf("published episode of %s: %s", show.Name, slug)
	return item
}

// matchEpisodeVideo resolves the episode against the show's YouTube
// uploads. No match is fine; the article just goes out without embed.
func (r *Runner) matchEpisodeVideo(ctx context.Context, show config.Show, ep feeds.Item, fetcher *feeds.Fetcher) string {
	if show.YouTubeChannelID == "" {
		return ""
	}

	videos, err := fetcher.ChannelVideos(ctx, show.YouTubeChannelID)
	if err != nil {
		log.Printf("channel feed for %s unavailable: %v", show.Name, err)
		return ""
	}

	for _, v := range videos {
		if match.TitlesMatch(ep.Title, v.Title) {
			return v.URL
		}
	}
	return ""
}
