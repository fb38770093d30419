// Package moderation screens outgoing text content. Matching runs on a
// normalized view of the input (lowercased, leet speak folded, punctuation
// and spacing stripped) so "s.p-4.m" still matches "spam", while the
// replacement is applied to the original runes to preserve layout.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/abadojack/whatlanggo"
)

type Moderator struct {
	matcher         *goahocorasick.Machine
	replacementChar rune
}

// NewModerator builds the Aho-Corasick automaton from the blocked word list.
func NewModerator(blockedWords []string, replacementChar rune) (Moderator, error) {
	patterns := make([][]rune, len(blockedWords))
	for i, word := range blockedWords {
		patterns[i], _ = normalize([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: m, replacementChar: replacementChar}, nil
}

// Censor replaces every blocked span with the replacement character and
// returns the matched words for logging.
func (m *Moderator) Censor(original string) (string, []string) {
	origRunes := []rune(original)
	normalized, origIdx := normalize(origRunes)
	if len(normalized) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	var found []string
	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)
		if normStart < 0 || normEnd > len(origIdx) {
			continue
		}
		found = append(found, string(span.Word))

		origStart := origIdx[normStart]
		origEnd := origIdx[normEnd-1] + 1
		for i := origStart; i < origEnd; i++ {
			origRunes[i] = m.replacementChar
		}
	}
	return string(origRunes), found
}

// DetectLanguage returns the ISO 639-1 code of the content's language,
// or the empty string when detection has nothing to work with.
func DetectLanguage(content string) string {
	info := whatlanggo.Detect(content)
	return info.Lang.Iso6391()
}

// normalize lowercases, folds leet speak and drops noise runes, keeping the
// index of every surviving rune in the original slice.
func normalize(input []rune) ([]rune, []int) {
	norm := make([]rune, 0, len(input))
	origIdx := make([]int, 0, len(input))
	for i, r := range input {
		clean := foldLeet(r)
		if unicode.IsPunct(clean) || unicode.IsSpace(clean) || unicode.IsSymbol(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return norm, origIdx
}

func foldLeet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
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
