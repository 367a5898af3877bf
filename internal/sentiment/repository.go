package sentiment

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// rawLexicon is the on-disk YAML shape of a lexicon override file.
// Every section is optional; listed entries are merged into the
// built-in lexicon.
type rawLexicon struct {
	PositiveWords   []string           `yaml:"positive_words"`
	NegativeWords   []string           `yaml:"negative_words"`
	Intensifiers    map[string]float64 `yaml:"intensifiers"`
	Negations       []string           `yaml:"negations"`
	PositivePhrases []string           `yaml:"positive_phrases"`
	NegativePhrases []string           `yaml:"negative_phrases"`
}

// LoadLexicon builds the classifier lexicon, merging *.yaml override
// files from dir on top of the built-in defaults. A missing or empty
// directory is valid and yields the defaults unchanged. Overrides are
// loaded once at startup, no hot reload.
func LoadLexicon(dir string) (*Lexicon, error) {
	lex := DefaultLexicon()
	if dir == "" {
		return lex, nil
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return lex, nil // no override directory means defaults only
	}
	if err != nil {
		return nil, fmt.Errorf("sentiment lexicon dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sentiment lexicon path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading sentiment lexicon dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading lexicon file %s: %w", path, err)
		}

		var raw rawLexicon
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing lexicon file %s: %w", path, err)
		}

		if err := mergeLexicon(lex, raw); err != nil {
			return nil, fmt.Errorf("lexicon file %s: %w", path, err)
		}
	}

	return lex, nil
}

func mergeLexicon(lex *Lexicon, raw rawLexicon) error {
	for _, w := range raw.PositiveWords {
		lex.PositiveWords[strings.ToLower(w)] = true
	}
	for _, w := range raw.NegativeWords {
		lex.NegativeWords[strings.ToLower(w)] = true
	}
	for w, mult := range raw.Intensifiers {
		if mult <= 0 {
			return fmt.Errorf("intensifier %q: multiplier must be > 0", w)
		}
		lex.Intensifiers[strings.ToLower(w)] = mult
	}
	for _, w := range raw.Negations {
		lex.Negations[strings.ToLower(w)] = true
	}

	for _, p := range raw.PositivePhrases {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("positive phrase %q: %w", p, err)
		}
		lex.PositivePhrases = append(lex.PositivePhrases, re)
	}
	for _, p := range raw.NegativePhrases {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("negative phrase %q: %w", p, err)
		}
		lex.NegativePhrases = append(lex.NegativePhrases, re)
	}

	return nil
}
