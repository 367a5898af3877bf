package sentiment

import "regexp"

// Lexicon is the fixed rule table behind the classifier: keyword sets,
// intensifier multipliers, negation words, and weighted phrase patterns.
// It is immutable after construction, which is what keeps Classify a
// pure function of its input text.
type Lexicon struct {
	PositiveWords map[string]bool
	NegativeWords map[string]bool
	Intensifiers  map[string]float64
	Negations     map[string]bool

	PositivePhrases []*regexp.Regexp
	NegativePhrases []*regexp.Regexp
}

// DefaultLexicon returns the built-in restaurant-domain rule table.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		PositiveWords: wordSet(
			"excellent", "amazing", "fantastic", "wonderful", "great", "good", "delicious",
			"tasty", "fresh", "hot", "perfect", "outstanding", "superb", "brilliant",
			"lovely", "beautiful", "friendly", "helpful", "quick", "fast", "efficient",
			"clean", "cozy", "comfortable", "relaxing", "enjoyable", "pleasant",
			"recommend", "love", "loved", "favorite", "best", "top", "quality",
			"value", "worth", "satisfied", "happy", "pleased", "impressed",
		),
		NegativeWords: wordSet(
			"terrible", "awful", "horrible", "disgusting", "bad", "poor", "worst",
			"hate", "hated", "disappointing", "disappointed", "bland", "tasteless",
			"cold", "stale", "overpriced", "expensive", "slow", "rude", "unfriendly",
			"dirty", "messy", "noisy", "crowded", "uncomfortable", "unpleasant",
			"avoid", "waste", "regret", "sorry",
			"complain", "complaint", "problem", "issue", "wrong", "mistake",
		),
		Intensifiers: map[string]float64{
			"very": 1.5, "extremely": 2.0, "incredibly": 2.0, "absolutely": 1.8,
			"really": 1.3, "quite": 1.2, "pretty": 1.1, "somewhat": 0.8,
			"rather": 0.9, "fairly": 0.9, "totally": 1.7, "completely": 1.8,
		},
		Negations: wordSet(
			"not", "no", "never", "nothing", "nobody", "nowhere", "neither",
			"nor", "none", "hardly", "scarcely", "barely", "seldom", "rarely",
		),
		PositivePhrases: compilePhrases(
			`\b(highly recommend|would recommend|will return|come back|worth it)\b`,
			`\b(great (food|service|experience|place|restaurant))\b`,
			`\b(excellent (food|service|experience|meal|dish))\b`,
			`\b(amazing (food|service|experience|meal|taste))\b`,
			`\b(love this place|favorite restaurant|best (food|service|meal))\b`,
		),
		NegativePhrases: compilePhrases(
			`\b(would not recommend|will not return|never again|avoid this place)\b`,
			`\b(terrible (food|service|experience|meal))\b`,
			`\b(awful (food|service|experience|meal))\b`,
			`\b(worst (food|service|experience|meal|restaurant))\b`,
			`\b(waste of (money|time)|not worth it|overpriced)\b`,
		),
	}
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func compilePhrases(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
