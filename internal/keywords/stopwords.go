package keywords

// stopWords is the fixed English stop-word list. Project-specific noise
// words (ticket vocabulary like "fix" or "update") belong in the scoring
// ruleset's extra_stop_words, not here.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "were": {}, "be": {},
	"been": {}, "being": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "must": {}, "shall": {}, "can": {}, "not": {},
	"no": {}, "nor": {}, "so": {}, "yet": {}, "both": {}, "either": {},
	"neither": {}, "each": {}, "few": {}, "more": {}, "most": {}, "other": {},
	"some": {}, "such": {}, "than": {}, "too": {}, "very": {}, "just": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "it": {}, "its": {},
	"their": {}, "they": {}, "we": {}, "you": {}, "he": {}, "she": {},
	"him": {}, "her": {}, "his": {}, "our": {}, "your": {}, "my": {},
	"any": {}, "all": {}, "also": {}, "when": {}, "where": {}, "how": {},
	"what": {}, "which": {}, "who": {}, "if": {}, "else": {}, "then": {},
	"into": {}, "up": {}, "out": {}, "over": {},
}

// IsStopWord reports whether the lower-cased token is on the built-in list.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
