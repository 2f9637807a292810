package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"searchserver/internal/index"
)

const maxConsoleLine = 1 << 20

// runConsole drives the index from a line-oriented stream:
//
//	<stop words>
//	<document count N>
//	N times: <text> then <k r1 ... rk>
//	<query> per remaining line
//
// Documents get ids 0..N-1 and status ACTUAL. Rejected documents and queries
// print "Error: <reason>" and the session continues.
func runConsole(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxConsoleLine)
	out := bufio.NewWriter(w)
	defer out.Flush()

	readLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimRight(scanner.Text(), "\r"), true
	}

	stopWords, _ := readLine()
	idx, err := index.NewIndexFromText(stopWords)
	if err != nil {
		return err
	}

	countLine, ok := readLine()
	if !ok {
		return scanner.Err()
	}
	count, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil {
		return fmt.Errorf("document count: %w", err)
	}

	for id := 0; id < count; id++ {
		text, ok := readLine()
		if !ok {
			return fmt.Errorf("document %d: unexpected end of input", id)
		}
		ratingsLine, _ := readLine()
		ratings, err := parseRatings(ratingsLine)
		if err != nil {
			return fmt.Errorf("document %d ratings: %w", id, err)
		}
		if err := idx.AddDocument(id, text, index.StatusActual, ratings); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}

	for {
		query, ok := readLine()
		if !ok {
			break
		}
		if strings.TrimSpace(query) == "" {
			continue
		}
		docs, err := idx.FindTopDocuments(query)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		for _, doc := range docs {
			fmt.Fprintln(out, doc.String())
		}
	}
	return scanner.Err()
}

// parseRatings reads "k r1 ... rk". A blank line means no ratings.
func parseRatings(line string) ([]int, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, err
	}
	if n < 0 || n != len(fields)-1 {
		return nil, fmt.Errorf("expected %d ratings, got %d", n, len(fields)-1)
	}
	ratings := make([]int, 0, n)
	for _, f := range fields[1:] {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, v)
	}
	return ratings, nil
}
