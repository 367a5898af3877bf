package sentiment

import (
	"regexp"
	"strings"
)

// Label is a three-way sentiment classification.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
)

// Classification thresholds on the net (positive - negative) score.
const (
	weakThreshold   = 0.5
	strongThreshold = 2.0
)

// negationWindow is how many words before a keyword a negation still
// flips it.
const negationWindow = 3

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// Result is the full outcome of classifying one text.
type Result struct {
	Label         Label   `json:"label"`
	Confidence    float64 `json:"confidence"`
	PositiveScore float64 `json:"positive_score"`
	NegativeScore float64 `json:"negative_score"`
}

// Classifier assigns sentiment labels using a fixed lexicon. It holds
// no mutable state: the same text always yields the same label, and
// concurrent use needs no coordination.
type Classifier struct {
	lex *Lexicon
}

func NewClassifier(lex *Lexicon) *Classifier {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Classifier{lex: lex}
}

// Classify assigns one of {positive, negative, neutral} to the text.
// Empty or whitespace-only text is neutral.
func (c *Classifier) Classify(text string) Label {
	return c.Analyze(text).Label
}

// Analyze classifies the text and reports the underlying scores and a
// heuristic confidence.
func (c *Classifier) Analyze(text string) Result {
	text = strings.ToLower(strings.TrimSpace(text))
	if len(text) < 3 {
		// Empty, whitespace-only, or too short to say anything.
		return Result{Label: LabelNeutral, Confidence: 0.3}
	}

	words := wordPattern.FindAllString(text, -1)
	positive := c.score(text, words, c.lex.PositiveWords, c.lex.PositivePhrases)
	negative := c.score(text, words, c.lex.NegativeWords, c.lex.NegativePhrases)

	label, confidence := classify(positive, negative)
	return Result{
		Label:         label,
		Confidence:    confidence,
		PositiveScore: positive,
		NegativeScore: negative,
	}
}

// score tallies phrase matches (weight 2 each) plus keyword hits, with
// intensifier and negation context applied per hit. A negated hit
// contributes -0.5x, pulling the score toward the opposite pole.
func (c *Classifier) score(text string, words []string, keywords map[string]bool, phrases []*regexp.Regexp) float64 {
	score := 0.0

	for _, phrase := range phrases {
		score += float64(len(phrase.FindAllString(text, -1))) * 2.0
	}

	for i, word := range words {
		if !keywords[word] {
			continue
		}

		hit := 1.0
		if i > 0 {
			if mult, ok := c.lex.Intensifiers[words[i-1]]; ok {
				hit *= mult
			}
		}

		for j := max(0, i-negationWindow); j < i; j++ {
			if c.lex.Negations[words[j]] {
				hit *= -0.5
				break
			}
		}

		score += hit
	}

	return score
}

func classify(positive, negative float64) (Label, float64) {
	net := positive - negative
	total := positive + negative

	var label Label
	var confidence float64

	abs := net
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs < weakThreshold:
		label = LabelNeutral
		confidence = 1.0 - (abs/weakThreshold)*0.3
	case net > 0:
		label = LabelPositive
		confidence = scaledConfidence(net)
	default:
		label = LabelNegative
		confidence = scaledConfidence(abs)
	}

	// Texts dense with sentiment words get a confidence boost; texts
	// with none get dampened.
	if total > 0 {
		confidence = min(confidence*(1+total/10), 0.95)
	} else {
		confidence = max(confidence*0.7, 0.3)
	}

	return label, confidence
}

func scaledConfidence(magnitude float64) float64 {
	if magnitude >= strongThreshold {
		return min(0.9, 0.6+(magnitude/strongThreshold)*0.3)
	}
	return 0.5 + (magnitude/strongThreshold)*0.4
}
