// Package compose builds generation requests for candidate items and
// parses the structured responses back into article fields.
package compose

import (
	"fmt"
	"strings"

	"github.com/wverbeek/gamewire/internal/classify"
)

// Word targets per category. Rumors and thin source snippets get short
// rewrites, reviews get long ones, everything else medium.
const (
	wordsShort  = 250
	wordsMedium = 500
	wordsLong   = 900

	// shortSnippetLen is the snippet length under which a medium
	// rewrite would outrun its source material.
	shortSnippetLen = 350

	maxGenerationTokens = 2048
)

const systemPrompt = `Je bent redacteur van een Nederlandstalige gamenieuwssite. Je herschrijft binnenkomende berichten tot zelfstandige artikelen in vlot, feitelijk Nederlands. Verzin geen feiten die niet in de bron staan.

Antwoord ALTIJD exact in dit formaat:

TITEL: <pakkende titel>
EXCERPT: <samenvatting van maximaal 200 tekens>
IMAGE_PROMPT: <korte Engelse beschrijving voor een headerafbeelding>
SCORE: <cijfer 1-100, ALLEEN bij een review>
---
<artikeltekst in markdown met ## tussenkoppen>`

// Request holds everything the generation service needs for one item.
type Request struct {
	Title    string
	Content  string
	Source   string
	Category classify.Category
}

// Prompts returns the system and user prompt for a request.
func Prompts(req Request) (system, user string) {
	target := WordTarget(req.Category, len(req.Content))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Categorie: %s\n", req.Category)
	fmt.Fprintf(&sb, "Bron: %s\n", req.Source)
	fmt.Fprintf(&sb, "Richtlengte: ongeveer %d woorden\n", target)
	if req.Category == classify.CategoryReview {
		sb.WriteString("Dit is een review: sluit af met een SCORE-regel.\n")
	}
	fmt.Fprintf(&sb, "\nOorspronkelijke titel: %s\n\nBronmateriaal:\n%s\n", req.Title, req.Content)

	return systemPrompt, sb.String()
}

// WordTarget returns the word-count target for a category, shortened
// when the source snippet is thin.
func WordTarget(category classify.Category, snippetLen int) int {
	switch {
	case category == classify.CategoryReview:
		return wordsLong
	case category == classify.CategoryRumor:
		return wordsShort
	case snippetLen > 0 && snippetLen < shortSnippetLen:
		return wordsShort
	default:
		return wordsMedium
	}
}

// MaxTokens is the completion budget for one generation call.
func MaxTokens() int { return maxGenerationTokens }
