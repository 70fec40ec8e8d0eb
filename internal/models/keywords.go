package models

import (
	"fmt"
	"strings"
)

// KeywordEntry is one (label, phrase) pair to search for.
type KeywordEntry struct {
	Label  string `json:"label"`
	Phrase string `json:"phrase"`
}

// KeywordCatalog maps mood labels to search phrases, remembering label insertion order.
type KeywordCatalog struct {
	labels  []string
	phrases map[string][]string
}

func NewKeywordCatalog() *KeywordCatalog {
	return &KeywordCatalog{phrases: make(map[string][]string)}
}

// Add appends phrases under label. Labels are trimmed; the first Add of a label fixes its position.
func (c *KeywordCatalog) Add(label string, phrases ...string) {
	label = strings.TrimSpace(label)
	if _, ok := c.phrases[label]; !ok {
		c.labels = append(c.labels, label)
		c.phrases[label] = []string{}
	}
	c.phrases[label] = append(c.phrases[label], phrases...)
}

// Labels returns labels in insertion order.
func (c *KeywordCatalog) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

func (c *KeywordCatalog) Phrases(label string) []string {
	out := make([]string, len(c.phrases[label]))
	copy(out, c.phrases[label])
	return out
}

// Entries flattens the catalog into (label, phrase) pairs: labels in order, then phrases in order.
func (c *KeywordCatalog) Entries() []KeywordEntry {
	entries := make([]KeywordEntry, 0, c.Len())
	for _, label := range c.labels {
		for _, phrase := range c.phrases[label] {
			entries = append(entries, KeywordEntry{Label: label, Phrase: phrase})
		}
	}
	return entries
}

// Len counts phrases across all labels.
func (c *KeywordCatalog) Len() int {
	n := 0
	for _, p := range c.phrases {
		n += len(p)
	}
	return n
}

// Validate requires at least one label, and a non-blank name and at least one non-blank phrase per label.
func (c *KeywordCatalog) Validate() error {
	if len(c.labels) == 0 {
		return fmt.Errorf("keyword catalog has no labels")
	}
	for _, label := range c.labels {
		if label == "" {
			return fmt.Errorf("keyword catalog has a blank label")
		}
		phrases := c.phrases[label]
		if len(phrases) == 0 {
			return fmt.Errorf("label %q has no phrases", label)
		}
		for i, p := range phrases {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("label %q phrase %d is blank", label, i)
			}
		}
	}
	return nil
}
