package index

import (
	"fmt"
	"strings"
)

// DocumentStatus classifies a stored document. Scoring ignores it; only
// predicates look at it.
type DocumentStatus int

const (
	StatusActual DocumentStatus = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

var statusNames = [...]string{
	StatusActual:     "ACTUAL",
	StatusIrrelevant: "IRRELEVANT",
	StatusBanned:     "BANNED",
	StatusRemoved:    "REMOVED",
}

func (s DocumentStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("DocumentStatus(%d)", int(s))
	}
	return statusNames[s]
}

// ParseDocumentStatus resolves a status name, ignoring case and surrounding spaces.
func ParseDocumentStatus(raw string) (DocumentStatus, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for i, candidate := range statusNames {
		if candidate == name {
			return DocumentStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown document status %q: %w", raw, ErrInvalidArgument)
}

// MarshalText implements encoding.TextMarshaler.
func (s DocumentStatus) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("unknown document status %d: %w", int(s), ErrInvalidArgument)
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *DocumentStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseDocumentStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
