package index

import (
	"fmt"
	"sort"
	"strings"
)

// Query is the parsed form of a raw query string.
type Query struct {
	PlusWords  map[string]struct{}
	MinusWords map[string]struct{}
}

// validateQuery rejects empty queries, control characters and malformed
// negations before any parsing happens.
func validateQuery(raw string) error {
	if raw == "" {
		return fmt.Errorf("query is empty: %w", ErrInvalidArgument)
	}
	for _, word := range SplitWords(raw) {
		if !ValidateWord(word) {
			return fmt.Errorf("query word %q contains invalid characters: %w", word, ErrInvalidArgument)
		}
		if !ValidateMinusWord(word) {
			return fmt.Errorf("query word %q is a malformed minus word: %w", word, ErrInvalidArgument)
		}
	}
	return nil
}

// parseQuery splits an already validated query into plus and minus words.
// A negated term lands in both sets, so it always excludes the documents
// carrying it.
func (idx *Index) parseQuery(raw string) (Query, error) {
	query := Query{
		PlusWords:  make(map[string]struct{}),
		MinusWords: make(map[string]struct{}),
	}

	words, err := idx.stopWords.splitNoStop(raw)
	if err != nil {
		return Query{}, err
	}
	for _, word := range words {
		if strings.HasPrefix(word, "-") {
			word = word[1:]
			if idx.stopWords.contains(word) {
				continue
			}
			query.MinusWords[word] = struct{}{}
		}
		query.PlusWords[word] = struct{}{}
	}
	return query, nil
}

// ParseQuery validates raw and returns its plus and minus words.
func (idx *Index) ParseQuery(raw string) (Query, error) {
	if err := validateQuery(raw); err != nil {
		return Query{}, err
	}
	return idx.parseQuery(raw)
}

func sortedWords(set map[string]struct{}) []string {
	words := make([]string, 0, len(set))
	for word := range set {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}
