package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const channelFeedURL = "https://www.youtube.com/feeds/videos.xml?channel_id="

// Video is one upload from a YouTube channel feed.
type Video struct {
	Title string
	ID    string
	URL   string
}

// channelFeed mirrors the minimal subset of the Atom channel feed we
// need: entry titles and video IDs.
type channelFeed struct {
	Entries []struct {
		Title   string `xml:"title"`
		VideoID string `xml:"videoId"`
	} `xml:"entry"`
}

// ChannelVideos returns the recent uploads of a channel. Results are
// cached for the lifetime of the Fetcher so multiple episodes can be
// matched against the same channel without refetching.
func (f *Fetcher) ChannelVideos(ctx context.Context, channelID string) ([]Video, error) {
	if videos, ok := f.channels[channelID]; ok {
		return videos, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, channelFeedURL+channelID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching channel feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("channel feed returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading channel feed: %w", err)
	}

	videos, err := parseChannelFeed(body)
	if err != nil {
		return nil, err
	}

	f.channels[channelID] = videos
	return videos, nil
}

func parseChannelFeed(data []byte) ([]Video, error) {
	var feed channelFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("parsing channel feed: %w", err)
	}

	var videos []Video
	for _, e := range feed.Entries {
		title := strings.TrimSpace(e.Title)
		id := strings.TrimSpace(e.VideoID)
		if title == "" || id == "" {
			continue
		}
		videos = append(videos, Video{
			Title: title,
			ID:    id,
			URL:   "https://www.youtube.com/watch?v=" + id,
		})
	}
	return videos, nil
}
