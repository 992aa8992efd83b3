// Package classify assigns exactly one category to an incoming item and
// flags content that is irrelevant to the target market.
package classify

import (
	"regexp"
	"strings"
)

// Category is the editorial category assigned to an article.
type Category string

const (
	CategoryNews    Category = "news"
	CategoryReview  Category = "review"
	CategoryPreview Category = "preview"
	CategoryRumor   Category = "rumor"
	CategoryPodcast Category = "podcast"
	CategoryVideo   Category = "video"
	CategoryColumn  Category = "column"
	CategoryDeals   Category = "deals"
)

type rule struct {
	category Category
	pattern  *regexp.Regexp
}

// rules is evaluated in order; the first match wins. Review must come
// before rumor: a leaked review is still a review. Categories are
// mutually exclusive by construction of this ordering.
var rules = []rule{
	{CategoryReview, regexp.MustCompile(`\breview\b|\brecensie\b|\bhands-?on\b|\bgetest\b|\bwe tested\b`)},
	{CategoryPreview, regexp.MustCompile(`\bpreview\b|\bvooruitblik\b|\beerste indruk(ken)?\b|\bfirst impressions?\b`)},
	{CategoryRumor, regexp.MustCompile(`\brumou?rs?\b|\bgeruchten?\b|\bleaks?\b|\bgelekt\b|\binsider claims?\b|\bnaar verluidt\b|\breportedly\b`)},
	{CategoryPodcast, regexp.MustCompile(`\bpodcast\b|\baflevering\b|\bepisode #?\d+\b`)},
	{CategoryVideo, regexp.MustCompile(`\btrailer\b|\bgameplay video\b|\bvideo:\s|\bbekijk de video\b`)},
	{CategoryColumn, regexp.MustCompile(`\bcolumn\b|\bopinie\b|\bopinion\b|\beditorial\b|\bbeschouwing\b`)},
	{CategoryDeals, regexp.MustCompile(`\baanbieding(en)?\b|\bkorting\b|\bdeals?\b|\bsale\b|\bafgeprijsd\b`)},
}

// Detect maps a title and content snippet to a category. Matching is
// case-insensitive over title+content; no rule hit means plain news.
func Detect(title, content string) Category {
	text := strings.ToLower(title + " " + content)
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.category
		}
	}
	return CategoryNews
}
