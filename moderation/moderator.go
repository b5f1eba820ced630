// Package moderation masks forbidden words in chat content before it is posted
// to a room.
package moderation

import (
	"log/slog"
	"unicode"
	"watch-party/errors"

	goahocorasick "github.com/anknown/ahocorasick"
)

// leet folds look-alike characters onto the letter they imitate.
var leet = map[rune]rune{
	'4': 'a', '@': 'a',
	'3': 'e', '€': 'e',
	'1': 'i', '!': 'i', '|': 'i',
	'0': 'o',
	'5': 's', '$': 's',
}

// Moderator matches every forbidden word in one pass over the folded text.
type Moderator struct {
	machine *goahocorasick.Machine
	mask    rune
}

// folded is text reduced to lowercase letters and digits. positions[i] is the
// index in the original runes of folded rune i.
type folded struct {
	runes     []rune
	positions []int
}

func fold(input []rune) folded {
	f := folded{runes: make([]rune, 0, len(input)), positions: make([]int, 0, len(input))}
	for i, r := range input {
		if mapped, ok := leet[r]; ok {
			r = mapped
		}
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		f.runes = append(f.runes, unicode.ToLower(r))
		f.positions = append(f.positions, i)
	}
	return f
}

// NewModerator builds the automaton over the folded words. Words folding to
// nothing are ignored, ErrEmptyWords is returned when none is left.
func NewModerator(words []string, mask rune, log *slog.Logger) (Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if f := fold([]rune(word)); len(f.runes) > 0 {
			patterns = append(patterns, f.runes)
		}
	}
	if len(patterns) == 0 {
		return Moderator{}, errors.ErrEmptyWords
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return Moderator{}, err
	}
	log.Debug("Moderator built", "patterns", len(patterns))
	return Moderator{machine: machine, mask: mask}, nil
}

// Censor masks every original rune spanned by a match, noise inside the span
// included, and returns the folded words found in order of appearance.
func (m Moderator) Censor(content string) (string, []string) {
	original := []rune(content)
	f := fold(original)
	if len(f.runes) == 0 {
		return content, nil
	}
	terms := m.machine.MultiPatternSearch(f.runes, false)
	if len(terms) == 0 {
		return content, nil
	}

	found := make([]string, 0, len(terms))
	for _, term := range terms {
		last := term.Pos + len(term.Word) - 1
		if term.Pos < 0 || last >= len(f.positions) {
			continue
		}
		for i := f.positions[term.Pos]; i <= f.positions[last]; i++ {
			original[i] = m.mask
		}
		found = append(found, string(term.Word))
	}
	return string(original), found
}
