package index

import (
	"fmt"
	"strings"
)

// SplitWords breaks text on the ASCII space. Runs of spaces collapse and no
// empty words are produced. Other whitespace is kept inside words, where
// ValidateWord rejects it.
func SplitWords(text string) []string {
	words := make([]string, 0, strings.Count(text, " ")+1)
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			if start >= 0 {
				words = append(words, text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

// ValidateWord reports whether word is free of control characters (bytes
// below 0x20, NUL included). Multi-byte UTF-8 sequences never trip it.
func ValidateWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return false
		}
	}
	return true
}

// ValidateMinusWord checks negation syntax on a raw query token: a bare "-",
// a doubled "--" prefix and the empty word are rejected.
func ValidateMinusWord(word string) bool {
	if word == "" || word == "-" || strings.HasPrefix(word, "--") {
		return false
	}
	return true
}

type stopWordSet map[string]struct{}

func newStopWordSet(words []string) (stopWordSet, error) {
	set := make(stopWordSet, len(words))
	for _, word := range SplitWords(strings.Join(words, " ")) {
		if !ValidateWord(word) {
			return nil, fmt.Errorf("stop word %q contains invalid characters: %w", word, ErrInvalidArgument)
		}
		set[word] = struct{}{}
	}
	return set, nil
}

func (s stopWordSet) contains(word string) bool {
	_, ok := s[word]
	return ok
}

// splitNoStop tokenizes text, validating every word and dropping stop words.
func (s stopWordSet) splitNoStop(text string) ([]string, error) {
	raw := SplitWords(text)
	words := make([]string, 0, len(raw))
	for _, word := range raw {
		if !ValidateWord(word) {
			return nil, fmt.Errorf("word %q contains invalid characters: %w", word, ErrInvalidArgument)
		}
		if s.contains(word) {
			continue
		}
		words = append(words, word)
	}
	return words, nil
}
