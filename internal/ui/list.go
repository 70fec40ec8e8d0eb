package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/moodset/internal/models"
)

var _ list.Item = keywordItem{}

// keywordItem wraps [models.KeywordEntry] to implement [list.Item].
type keywordItem struct {
	entry models.KeywordEntry
}

func (i keywordItem) FilterValue() string { return i.entry.Label + " " + i.entry.Phrase }
func (i keywordItem) Title() string       { return i.entry.Phrase }
func (i keywordItem) Description() string { return "mood: " + i.entry.Label }

func keywordItems(catalog *models.KeywordCatalog) []list.Item {
	entries := catalog.Entries()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = keywordItem{entry: e}
	}
	return items
}
