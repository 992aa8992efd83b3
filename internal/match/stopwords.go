package match

// stopWords covers English and Dutch function words. Dutch is included
// because several configured sources publish in Dutch.
var stopWords = map[string]bool{
	// English
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"were": true, "been": true, "being": true, "have": true, "has": true,
	"had": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "can": true,
	"not": true, "but": true, "nor": true, "yet": true, "both": true,
	"with": true, "into": true, "through": true, "during": true,
	"before": true, "after": true, "above": true, "below": true,
	"from": true, "about": true, "than": true, "too": true, "very": true,
	"just": true, "how": true, "what": true, "which": true, "who": true,
	"this": true, "that": true, "these": true, "those": true, "its": true,
	"new": true, "out": true, "one": true, "two": true, "also": true,
	"all": true, "any": true, "more": true, "most": true, "other": true,
	"some": true, "such": true, "now": true, "you": true, "your": true,
	"get": true, "gets": true, "here": true, "there": true, "when": true,
	// Dutch
	"het": true, "een": true, "van": true, "met": true, "voor": true,
	"naar": true, "bij": true, "aan": true, "als": true, "dat": true,
	"die": true, "dit": true, "deze": true, "ook": true, "maar": true,
	"wordt": true, "worden": true, "zijn": true, "heeft": true,
	"hebben": true, "niet": true, "nog": true, "wat": true, "over": true,
	"onder": true, "tegen": true, "tijdens": true, "uit": true,
	"werd": true, "gaat": true, "komt": true, "komen": true, "weer": true,
	"jaar": true, "nieuwe": true, "alle": true, "veel": true, "meer": true,
	"door": true, "want": true, "dus": true, "toch": true, "wel": true,
}
