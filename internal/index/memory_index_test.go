package index

import (
	"errors"
	"math"
	"testing"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndexFromText("и в на")
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	return idx
}

func TestComputeAverageRating(t *testing.T) {
	cases := []struct {
		ratings []int
		want    int
	}{
		{ratings: nil, want: 0},
		{ratings: []int{7, 2, 7}, want: 5},
		{ratings: []int{8, -3}, want: 2},
		{ratings: []int{5, -12, 2, 1}, want: -1},
		{ratings: []int{-7}, want: -7},
	}
	for _, tc := range cases {
		if got := ComputeAverageRating(tc.ratings); got != tc.want {
			t.Fatalf("ComputeAverageRating(%v) = %d, want %d", tc.ratings, got, tc.want)
		}
	}
}

func TestAddDocumentTracksTermFrequencies(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.AddDocument(1, "пушистый кот и пушистый хвост", StatusActual, []int{7, 2, 7}); err != nil {
		t.Fatalf("add document: %v", err)
	}

	if got := idx.inverted["пушистый"][1]; math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected tf 0.5 for 'пушистый', got %v", got)
	}
	if got := idx.inverted["хвост"][1]; math.Abs(got-0.25) > 1e-12 {
		t.Fatalf("expected tf 0.25 for 'хвост', got %v", got)
	}
	if _, ok := idx.inverted["и"]; ok {
		t.Fatalf("stop word must not be indexed")
	}

	data, ok := idx.document(1)
	if !ok || data.rating != 5 || data.status != StatusActual {
		t.Fatalf("unexpected document data: %+v (found=%v)", data, ok)
	}
}

func TestAddDocumentOnlyStopWords(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.AddDocument(3, "и в на", StatusActual, nil); err != nil {
		t.Fatalf("add document: %v", err)
	}
	if idx.DocumentCount() != 1 {
		t.Fatalf("expected document to be stored")
	}
	if len(idx.inverted) != 0 {
		t.Fatalf("expected no postings, got %v", idx.inverted)
	}
}

func TestAddDocumentRejectsInvalidInput(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.AddDocument(1, "пушистый пёс и модный ошейник", StatusActual, []int{1, 2}); err != nil {
		t.Fatalf("add document: %v", err)
	}

	cases := []struct {
		name string
		id   int
		text string
	}{
		{name: "duplicate id", id: 1, text: "пушистый пёс"},
		{name: "negative id", id: -1, text: "пушистый пёс"},
		{name: "control character", id: 3, text: "большой пёс скво\x12рец"},
	}
	for _, tc := range cases {
		err := idx.AddDocument(tc.id, tc.text, StatusActual, []int{1, 2})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%s: expected ErrInvalidArgument, got %v", tc.name, err)
		}
	}

	if idx.DocumentCount() != 1 {
		t.Fatalf("rejected documents must not be stored, count=%d", idx.DocumentCount())
	}
	if _, ok := idx.inverted["большой"]; ok {
		t.Fatalf("rejected document leaked postings")
	}
	if err := idx.AddDocument(1, "кот", StatusActual, nil); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestDocumentIDAtFollowsInsertionOrder(t *testing.T) {
	idx := newTestIndex(t)
	for _, id := range []int{5, 1, 3} {
		if err := idx.AddDocument(id, "кот", StatusActual, nil); err != nil {
			t.Fatalf("add document %d: %v", id, err)
		}
	}

	for pos, want := range []int{5, 1, 3} {
		got, err := idx.DocumentIDAt(pos)
		if err != nil {
			t.Fatalf("DocumentIDAt(%d): %v", pos, err)
		}
		if got != want {
			t.Fatalf("DocumentIDAt(%d) = %d, want %d", pos, got, want)
		}
	}

	for _, pos := range []int{-1, 3, 100} {
		if _, err := idx.DocumentIDAt(pos); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("DocumentIDAt(%d): expected ErrOutOfRange, got %v", pos, err)
		}
	}
}
