package database

import (
	"database/sql"
	"fmt"
	"time"
)

// InsertArticle persists a new article. Unlike reads, failures here
// must surface: the pipeline treats a failed write as a per-item error
// and must not mark the source URL as seen.
func (db *DB) InsertArticle(a *Article) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO articles (slug, title, category, excerpt, body_markdown, body_html,
			image_prompt, original_url, podcast_guid, youtube_url, score, source,
			published_at, published_day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Slug, a.Title, a.Category, a.Excerpt, a.BodyMarkdown, a.BodyHTML,
		a.ImagePrompt, a.OriginalURL, a.PodcastGUID, a.YouTubeURL, a.Score, a.Source,
		a.PublishedAt, a.PublishedDay,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting article %q: %w", a.Slug, err)
	}
	return result.LastInsertId()
}

// KnownSourceKeys returns every original URL and podcast GUID already
// published. This seeds the run's exact-match dedup set.
func (db *DB) KnownSourceKeys() ([]string, error) {
	rows, err := db.conn.Query(
		`SELECT original_url, podcast_guid FROM articles
		WHERE original_url IS NOT NULL OR podcast_guid IS NOT NULL`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var u, g *string
		if err := rows.Scan(&u, &g); err != nil {
			return nil, err
		}
		if u != nil && *u != "" {
			keys = append(keys, *u)
		}
		if g != nil && *g != "" {
			keys = append(keys, *g)
		}
	}
	return keys, rows.Err()
}

// RecentTitles returns the most recent published titles, newest first,
// for semantic dedup.
func (db *DB) RecentTitles(limit int) ([]string, error) {
	rows, err := db.conn.Query(
		`SELECT title FROM articles ORDER BY published_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// CountPublishedOn returns how many articles were published on a local
// date (YYYY-MM-DD). The scheduler derives today's budget from it.
func (db *DB) CountPublishedOn(day string) (int, error) {
	var n int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM articles WHERE published_day = ?`, day,
	).Scan(&n)
	return n, err
}

// GetArticleBySlug returns a single article, or nil when absent.
func (db *DB) GetArticleBySlug(slug string) (*Article, error) {
	row := db.conn.QueryRow(
		`SELECT id, slug, title, category, excerpt, body_markdown, body_html,
			image_prompt, original_url, podcast_guid, youtube_url, score, source,
			published_at, published_day, created_at
		FROM articles WHERE slug = ?`, slug,
	)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// RecentArticles returns the newest articles, newest first.
func (db *DB) RecentArticles(limit int) ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT id, slug, title, category, excerpt, body_markdown, body_html,
			image_prompt, original_url, podcast_guid, youtube_url, score, source,
			published_at, published_day, created_at
		FROM articles ORDER BY published_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Slug, &a.Title, &a.Category, &a.Excerpt,
			&a.BodyMarkdown, &a.BodyHTML, &a.ImagePrompt, &a.OriginalURL,
			&a.PodcastGUID, &a.YouTubeURL, &a.Score, &a.Source,
			&a.PublishedAt, &a.PublishedDay, &a.CreatedAt); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// GetStats returns aggregate store statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}
	today := LocalDay(time.Now())

	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&s.TotalArticles); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM articles WHERE published_day = ?`, today,
	).Scan(&s.PublishedToday); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM articles WHERE category = 'review'`,
	).Scan(&s.Reviews); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM articles WHERE category = 'podcast'`,
	).Scan(&s.Podcasts); err != nil {
		return nil, err
	}
	return s, nil
}

// LocalDay formats a time as the local YYYY-MM-DD day string.
func LocalDay(t time.Time) string {
	return t.Format("2006-01-02")
}

func scanArticle(row *sql.Row) (*Article, error) {
	var a Article
	if err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Category, &a.Excerpt,
		&a.BodyMarkdown, &a.BodyHTML, &a.ImagePrompt, &a.OriginalURL,
		&a.PodcastGUID, &a.YouTubeURL, &a.Score, &a.Source,
		&a.PublishedAt, &a.PublishedDay, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
