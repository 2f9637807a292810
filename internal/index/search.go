package index

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

const (
	// MaxResultDocumentCount caps every FindTopDocuments result.
	MaxResultDocumentCount = 5

	relevanceEpsilon = 1e-6
)

// Document is a single ranked search result.
type Document struct {
	ID        int     `json:"id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

func (d Document) String() string {
	return "{ document_id = " + strconv.Itoa(d.ID) +
		", relevance = " + strconv.FormatFloat(d.Relevance, 'g', 6, 64) +
		", rating = " + strconv.Itoa(d.Rating) + " }"
}

// DocumentPredicate decides whether a document may appear in results.
type DocumentPredicate func(id int, status DocumentStatus, rating int) bool

// StatusPredicate keeps documents with exactly the given status.
func StatusPredicate(status DocumentStatus) DocumentPredicate {
	return func(_ int, docStatus DocumentStatus, _ int) bool {
		return docStatus == status
	}
}

// FindTopDocuments ranks ACTUAL documents against raw.
func (idx *Index) FindTopDocuments(raw string) ([]Document, error) {
	return idx.FindTopDocumentsByStatus(raw, StatusActual)
}

// FindTopDocumentsByStatus ranks documents with the given status against raw.
func (idx *Index) FindTopDocumentsByStatus(raw string, status DocumentStatus) ([]Document, error) {
	return idx.FindTopDocumentsFunc(raw, StatusPredicate(status))
}

// FindTopDocumentsFunc returns at most MaxResultDocumentCount documents that
// pass predicate, ordered by TF-IDF relevance and then by rating. A document
// carrying any minus word is dropped even if the predicate accepts it.
func (idx *Index) FindTopDocumentsFunc(raw string, predicate DocumentPredicate) ([]Document, error) {
	query, err := idx.ParseQuery(raw)
	if err != nil {
		return nil, err
	}

	matched := idx.findAllDocuments(query, predicate)

	sort.SliceStable(matched, func(i, j int) bool {
		if math.Abs(matched[i].Relevance-matched[j].Relevance) < relevanceEpsilon {
			return matched[i].Rating > matched[j].Rating
		}
		return matched[i].Relevance > matched[j].Relevance
	})
	if len(matched) > MaxResultDocumentCount {
		matched = matched[:MaxResultDocumentCount]
	}
	return matched, nil
}

func (idx *Index) findAllDocuments(query Query, predicate DocumentPredicate) []Document {
	relevance := make(map[int]float64)
	for _, word := range sortedWords(query.PlusWords) {
		postingsByDoc, ok := idx.postings(word)
		if !ok {
			continue
		}
		idf := idx.inverseDocumentFrequency(len(postingsByDoc))
		for id, tf := range postingsByDoc {
			data := idx.docs[id]
			if predicate(id, data.status, data.rating) {
				relevance[id] += idf * tf
			}
		}
	}

	for word := range query.MinusWords {
		postingsByDoc, ok := idx.postings(word)
		if !ok {
			continue
		}
		for id := range postingsByDoc {
			delete(relevance, id)
		}
	}

	ids := make([]int, 0, len(relevance))
	for id := range relevance {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	matched := make([]Document, 0, len(ids))
	for _, id := range ids {
		matched = append(matched, Document{ID: id, Relevance: relevance[id], Rating: idx.docs[id].rating})
	}
	return matched
}

// MatchDocument lists the plus words of raw found in document id, sorted. The
// list is empty when the document carries any minus word. The status is
// returned for every known document.
func (idx *Index) MatchDocument(raw string, id int) ([]string, DocumentStatus, error) {
	query, err := idx.ParseQuery(raw)
	if err != nil {
		return nil, 0, err
	}
	data, ok := idx.document(id)
	if !ok {
		return nil, 0, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}

	for word := range query.MinusWords {
		if postingsByDoc, ok := idx.postings(word); ok {
			if _, hit := postingsByDoc[id]; hit {
				return []string{}, data.status, nil
			}
		}
	}

	matched := make([]string, 0, len(query.PlusWords))
	for _, word := range sortedWords(query.PlusWords) {
		if postingsByDoc, ok := idx.postings(word); ok {
			if _, hit := postingsByDoc[id]; hit {
				matched = append(matched, word)
			}
		}
	}
	return matched, data.status, nil
}
