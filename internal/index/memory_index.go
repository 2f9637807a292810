package index

import (
	"fmt"
	"math"
	"sort"
)

// documentData is the per-document metadata kept next to the postings.
type documentData struct {
	rating int
	status DocumentStatus
}

// Index is an in-memory inverted index over short text documents. Documents
// are immutable once added.
//
// Index does no locking of its own: AddDocument must not run concurrently with
// any other method.
type Index struct {
	stopWords stopWordSet
	// term -> document id -> term frequency
	inverted map[string]map[int]float64
	docs     map[int]documentData
	order    []int
}

// NewIndex builds an empty index that drops the given stop words. Each entry
// may itself hold several space separated words.
func NewIndex(stopWords []string) (*Index, error) {
	set, err := newStopWordSet(stopWords)
	if err != nil {
		return nil, err
	}
	return &Index{
		stopWords: set,
		inverted:  make(map[string]map[int]float64),
		docs:      make(map[int]documentData),
	}, nil
}

// NewIndexFromText builds an index from a single space separated stop word list.
func NewIndexFromText(stopWords string) (*Index, error) {
	return NewIndex([]string{stopWords})
}

// AddDocument tokenizes text and merges its term frequencies into the index.
// Nothing is written unless every check passes.
func (idx *Index) AddDocument(id int, text string, status DocumentStatus, ratings []int) error {
	if id < 0 {
		return fmt.Errorf("document id %d is negative: %w", id, ErrInvalidArgument)
	}
	if _, exists := idx.docs[id]; exists {
		return fmt.Errorf("document %d: %w", id, ErrDuplicateID)
	}

	words, err := idx.stopWords.splitNoStop(text)
	if err != nil {
		return fmt.Errorf("document %d: %w", id, err)
	}

	if len(words) > 0 {
		step := 1.0 / float64(len(words))
		for _, word := range words {
			postingsByDoc, ok := idx.inverted[word]
			if !ok {
				postingsByDoc = make(map[int]float64)
				idx.inverted[word] = postingsByDoc
			}
			postingsByDoc[id] += step
		}
	}

	idx.docs[id] = documentData{rating: ComputeAverageRating(ratings), status: status}
	idx.order = append(idx.order, id)
	return nil
}

// DocumentCount reports how many documents have been added.
func (idx *Index) DocumentCount() int {
	return len(idx.docs)
}

// DocumentIDAt returns the id added at the given 0-based insertion position.
func (idx *Index) DocumentIDAt(position int) (int, error) {
	if position < 0 || position >= len(idx.order) {
		return 0, fmt.Errorf("position %d outside [0, %d): %w", position, len(idx.order), ErrOutOfRange)
	}
	return idx.order[position], nil
}

// StopWords lists the configured stop words in sorted order.
func (idx *Index) StopWords() []string {
	words := make([]string, 0, len(idx.stopWords))
	for word := range idx.stopWords {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// ComputeAverageRating returns the integer mean of ratings, truncated toward
// zero, or 0 when there are none.
func ComputeAverageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}

func (idx *Index) postings(term string) (map[int]float64, bool) {
	postingsByDoc, ok := idx.inverted[term]
	return postingsByDoc, ok
}

func (idx *Index) document(id int) (documentData, bool) {
	data, ok := idx.docs[id]
	return data, ok
}

// inverseDocumentFrequency is ln(N/df) for a term found in df documents.
func (idx *Index) inverseDocumentFrequency(df int) float64 {
	return math.Log(float64(idx.DocumentCount()) / float64(df))
}
