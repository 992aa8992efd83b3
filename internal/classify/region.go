package classify

import "strings"

// Content tied to the North American retail market is dropped entirely:
// the readership cannot act on it and partial rewrites read as filler.

// regionEvents are retail events that only happen in the US market.
var regionEvents = []string{
	"presidents day sale",
	"memorial day sale",
	"labor day sale",
	"thanksgiving sale",
	"4th of july sale",
	"fourth of july sale",
}

// regionRetailers only matter when they co-occur with a sale keyword;
// a GameStop earnings story is still relevant news.
var regionRetailers = []string{
	"best buy",
	"gamestop",
	"walmart",
	"target",
	"kohl's",
	"newegg",
}

var saleKeywords = []string{
	"deal", "deals", "sale", "discount", "% off", "save", "clearance",
	"preorder bonus", "pre-order bonus",
}

// regionPhrases mark explicit market exclusivity.
var regionPhrases = []string{
	"us only",
	"usa only",
	"us exclusive",
	"us-exclusive",
	"north america only",
	"na exclusive",
	"available in the us",
	"at participating us retailers",
	"valid in the united states",
}

// RegionLocked reports whether an item is tied to a non-target market
// and should be excluded before classification.
func RegionLocked(title, content string) bool {
	text := strings.ToLower(title + " " + content)

	for _, e := range regionEvents {
		if strings.Contains(text, e) {
			return true
		}
	}
	for _, p := range regionPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}

	for _, r := range regionRetailers {
		if !strings.Contains(text, r) {
			continue
		}
		for _, k := range saleKeywords {
			if strings.Contains(text, k) {
				return true
			}
		}
	}
	return false
}
