package moderation

import (
	"log/slog"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Moderator censors forbidden words in broadcast text.
// A Moderator built without words leaves every text untouched.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// normalized is the searchable form of a text plus, for every kept rune,
// its index in the original text.
type normalized struct {
	runes   []rune
	origIdx []int
}

// NewModerator builds an Aho-Corasick automaton over the normalized words.
// Words that normalize to nothing (pure punctuation, blanks) are ignored.
func NewModerator(words []string, replacement rune, log *slog.Logger) (*Moderator, error) {
	patterns := lo.FilterMap(words, func(word string, _ int) ([]rune, bool) {
		pattern := normalize(strings.TrimSpace(word)).runes
		return pattern, len(pattern) > 0
	})
	if len(patterns) == 0 {
		log.Debug("No censored words configured, moderation disabled")
		return &Moderator{replacement: replacement}, nil
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	log.Info("Moderation enabled", "words", len(patterns))
	return &Moderator{matcher: machine, replacement: replacement}, nil
}

// Censor replaces every forbidden word with the replacement rune, keeping the
// original length and spacing. It returns the words that were found.
func (m *Moderator) Censor(text string) (string, []string) {
	if m == nil || m.matcher == nil || text == "" {
		return text, nil
	}
	norm := normalize(text)
	if len(norm.runes) == 0 {
		return text, nil
	}
	terms := m.matcher.MultiPatternSearch(norm.runes, false)
	if len(terms) == 0 {
		return text, nil
	}

	out := []rune(text)
	var found []string
	for _, term := range terms {
		start, end := term.Pos, term.Pos+len(term.Word)
		if start < 0 || end > len(norm.origIdx) {
			continue
		}
		for i := norm.origIdx[start]; i <= norm.origIdx[end-1]; i++ {
			out[i] = m.replacement
		}
		found = append(found, string(term.Word))
	}
	return string(out), found
}

func normalize(text string) normalized {
	runes := []rune(text)
	n := normalized{
		runes:   make([]rune, 0, len(runes)),
		origIdx: make([]int, 0, len(runes)),
	}
	for i, r := range runes {
		clean := unleet(r)
		if unicode.IsPunct(clean) || unicode.IsSpace(clean) || unicode.IsSymbol(clean) {
			continue
		}
		n.runes = append(n.runes, unicode.ToLower(clean))
		n.origIdx = append(n.origIdx, i)
	}
	return n
}

// unleet maps common leet speak characters back to letters.
func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
