package database

// Article is a published article record. OriginalURL and PodcastGUID
// are unique when present; they are the exact-match dedup keys.
type Article struct {
	ID           int64
	Slug         string
	Title        string
	Category     string
	Excerpt      string
	BodyMarkdown string
	BodyHTML     string
	ImagePrompt  *string
	OriginalURL  *string
	PodcastGUID  *string
	YouTubeURL   *string
	Score        *int
	Source       *string
	PublishedAt  string // RFC3339
	PublishedDay string // local YYYY-MM-DD, used by the scheduler
	CreatedAt    *string
}

// Stats contains aggregate store statistics.
type Stats struct {
	TotalArticles  int
	PublishedToday int
	Reviews        int
	Podcasts       int
}
