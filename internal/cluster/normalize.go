package cluster

import (
	"sort"
	"strings"
	"unicode"
)

// stopWords are dropped from titles before similarity comparison.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"by": {}, "with": {}, "from": {}, "as": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "has": {},
	"have": {}, "had": {}, "will": {}, "would": {}, "after": {},
	"over": {}, "into": {}, "about": {}, "amid": {}, "says": {},
}

// aliases folds common headline paraphrases onto one token so wire and
// tabloid phrasings of the same event overlap. Applied after stemming.
var aliases = map[string]string{
	"fed":       "federal",
	"hike":      "raise",
	"lift":      "raise",
	"boost":     "raise",
	"slash":     "cut",
	"lower":     "cut",
	"quarter":   "25",
	"half":      "50",
	"percent":   "",
	"pct":       "",
	"breaking":  "",
	"update":    "",
	"exclusive": "",
}

// Tokenize lower-cases the title, strips punctuation, removes stop
// words, stems plurals, and folds paraphrase aliases. The result is the
// sorted, de-duplicated token set used as the similarity key.
func Tokenize(title string) []string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		f = stem(f)
		if alias, ok := aliases[f]; ok {
			f = alias
		}
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}

	sort.Strings(tokens)
	return tokens
}

// stem strips a trailing plural "s"; enough for headline vocabulary
// without a full stemmer.
func stem(token string) string {
	if len(token) > 3 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") {
		return token[:len(token)-1]
	}
	return token
}

// Jaccard computes token-set overlap in [0, 1]. Two empty sets score 0
// so contentless titles never cluster.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}

	intersection := 0
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := setB[t]; dup {
			continue
		}
		setB[t] = struct{}{}
		if _, ok := setA[t]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
