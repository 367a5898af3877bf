package metrics

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	v1 "github.com/tablescope/tablescope/internal/api/v1"
)

const (
	// maxThemes caps the merged theme list; the budget is split evenly
	// between keywords and phrases before merging.
	maxThemes = 10
	// minThemeCount excludes terms that appear only once.
	minThemeCount = 2
)

const (
	ThemeKeyword = "keyword"
	ThemePhrase  = "phrase"
)

// Theme is one recurring keyword or phrase across a batch of reviews.
// Frequency counts occurrences; Percentage relates the frequency to the
// number of reviews that carried any text, rounded to 1 place.
type Theme struct {
	Theme      string  `json:"theme"`
	Type       string  `json:"type"`
	Frequency  int     `json:"frequency"`
	Percentage float64 `json:"percentage"`
}

// themeWordPattern tokenizes review text. Words shorter than three
// letters never qualify as themes.
var themeWordPattern = regexp.MustCompile(`[a-zA-Z]{3,}`)

// themePhrasePatterns match recurring restaurant phrasing, e.g.
// "great pasta" or "friendly service".
var themePhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(great|good|excellent|amazing|wonderful|fantastic|delicious|tasty)\s+\w+\b`),
	regexp.MustCompile(`\b(bad|terrible|awful|horrible|disgusting|poor)\s+\w+\b`),
	regexp.MustCompile(`\b(friendly|rude|helpful|slow|fast|quick)\s+(service|staff|server|waiter|waitress)\b`),
	regexp.MustCompile(`\b(fresh|stale|hot|cold|warm|spicy|bland)\s+(food|meal|dish)\b`),
}

// themeStopWords are too common to be informative as keywords.
var themeStopWords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "with": true,
	"was": true, "are": true, "were": true, "been": true, "have": true,
	"has": true, "had": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "may": true,
	"might": true, "must": true, "can": true, "this": true,
	"that": true, "these": true, "those": true, "you": true,
	"she": true, "they": true, "him": true, "her": true, "them": true,
}

// ExtractThemes ranks the recurring keywords and phrases in review
// text. Only terms seen at least twice qualify. Each counter keeps the
// top half of the theme budget; the halves are merged and re-sorted by
// frequency, with alphabetical order breaking ties so the ranking is
// deterministic.
func ExtractThemes(records []v1.ReviewRecord) []Theme {
	texts := 0
	wordCounts := make(map[string]int)
	phraseCounts := make(map[string]int)

	for _, r := range records {
		text := strings.ToLower(strings.TrimSpace(r.Text))
		if text == "" {
			continue
		}
		texts++

		for _, word := range themeWordPattern.FindAllString(text, -1) {
			if !themeStopWords[word] {
				wordCounts[word]++
			}
		}
		for _, p := range themePhrasePatterns {
			for _, phrase := range p.FindAllString(text, -1) {
				phraseCounts[phrase]++
			}
		}
	}

	themes := make([]Theme, 0, maxThemes)
	themes = append(themes, topThemes(wordCounts, ThemeKeyword, texts)...)
	themes = append(themes, topThemes(phraseCounts, ThemePhrase, texts)...)

	sort.SliceStable(themes, func(i, j int) bool {
		if themes[i].Frequency != themes[j].Frequency {
			return themes[i].Frequency > themes[j].Frequency
		}
		return themes[i].Theme < themes[j].Theme
	})
	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}
	return themes
}

// topThemes ranks one counter and keeps its half of the theme budget.
func topThemes(counts map[string]int, themeType string, texts int) []Theme {
	ranked := make([]Theme, 0, len(counts))
	for term, count := range counts {
		if count < minThemeCount {
			continue
		}
		ranked = append(ranked, Theme{
			Theme:      term,
			Type:       themeType,
			Frequency:  count,
			Percentage: percentOf(count, texts),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Frequency != ranked[j].Frequency {
			return ranked[i].Frequency > ranked[j].Frequency
		}
		return ranked[i].Theme < ranked[j].Theme
	})
	if len(ranked) > maxThemes/2 {
		ranked = ranked[:maxThemes/2]
	}
	return ranked
}

func percentOf(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(count * 100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1).
		InexactFloat64()
}
