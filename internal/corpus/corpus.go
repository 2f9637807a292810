// Package corpus loads seed documents from a file and feeds them to an index.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"searchserver/internal/index"
)

// Entry is one document as written in a corpus file.
type Entry struct {
	ID      int                  `json:"id" toml:"id" yaml:"id"`
	Text    string               `json:"text" toml:"text" yaml:"text"`
	Status  index.DocumentStatus `json:"status" toml:"status" yaml:"status"`
	Ratings []int                `json:"ratings" toml:"ratings" yaml:"ratings"`
}

type file struct {
	Documents []Entry `json:"documents" toml:"documents" yaml:"documents"`
}

// Load decodes the documents of a .toml, .yaml/.yml or .json corpus file.
// Entries without a status are ACTUAL.
func Load(path string) ([]Entry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var f file
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(content, &f); err != nil {
			return nil, fmt.Errorf("parse toml corpus: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &f); err != nil {
			return nil, fmt.Errorf("parse yaml corpus: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(content, &f); err != nil {
			return nil, fmt.Errorf("parse json corpus: %w", err)
		}
	default:
		return nil, errors.New("corpus file must be .toml, .yaml, .yml, or .json")
	}

	return f.Documents, nil
}

// Apply adds entries to idx in order and stops at the first rejected one.
// It returns how many entries were added.
func Apply(idx *index.Index, entries []Entry) (int, error) {
	for i, e := range entries {
		if err := idx.AddDocument(e.ID, e.Text, e.Status, e.Ratings); err != nil {
			return i, fmt.Errorf("corpus entry %d: %w", i, err)
		}
	}
	return len(entries), nil
}
