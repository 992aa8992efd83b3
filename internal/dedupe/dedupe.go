// Package dedupe filters incoming candidates against what was already
// published and against each other within one run.
package dedupe

import (
	"log"

	"github.com/wverbeek/gamewire/internal/feeds"
	"github.com/wverbeek/gamewire/internal/match"
)

// RecentTitleWindow is how many recent published titles are held for
// semantic dedup.
const RecentTitleWindow = 200

// Known is the per-run working set of already-published identifiers:
// source URLs/GUIDs plus recent titles. It is threaded explicitly
// through a run rather than kept as ambient state, and must be updated
// immediately after each successful publication so a burst of
// near-duplicates within one run cannot all slip through.
type Known struct {
	keys   map[string]struct{}
	titles []string
}

// NewKnown builds the working set from persisted keys and titles.
func NewKnown(keys []string, titles []string) *Known {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return &Known{keys: set, titles: titles}
}

// HasKey reports whether a source URL or GUID was already published.
func (k *Known) HasKey(key string) bool {
	if key == "" {
		return false
	}
	_, ok := k.keys[key]
	return ok
}

// HasSimilarTitle reports whether a title is semantically close to any
// known published title.
func (k *Known) HasSimilarTitle(title string) bool {
	for _, t := range k.titles {
		if match.SimilarTitles(title, t) {
			return true
		}
	}
	return false
}

// Add records a freshly published item. Call it right after a
// successful create, not at the end of the run.
func (k *Known) Add(link, guid, title string) {
	if link != "" {
		k.keys[link] = struct{}{}
	}
	if guid != "" {
		k.keys[guid] = struct{}{}
	}
	if title != "" {
		k.titles = append(k.titles, title)
	}
}

// FilterNew returns the candidates that survive all three filters:
// exact URL/GUID dedup, semantic dedup against recent published titles,
// and in-batch dedup against candidates accepted earlier in this run.
// Deterministic for a fixed input and working set.
func FilterNew(candidates []feeds.Item, known *Known) []feeds.Item {
	var accepted []feeds.Item
	for _, c := range candidates {
		if known.HasKey(c.Link) || known.HasKey(c.GUID) {
			continue
		}
		if known.HasSimilarTitle(c.Title) {
			log.Printf("dropping near-duplicate of published story: %s", c.Title)
			continue
		}
		if similarToAccepted(c.Title, accepted) {
			log.Printf("dropping in-batch duplicate: %s", c.Title)
			continue
		}
		accepted = append(accepted, c)
	}
	return accepted
}

func similarToAccepted(title string, accepted []feeds.Item) bool {
	for _, a := range accepted {
		if match.SimilarTitles(title, a.Title) {
			return true
		}
	}
	return false
}
