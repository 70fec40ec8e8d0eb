package shared

import (
	"errors"
	"testing"
)

func TestParseKeywords(t *testing.T) {
	t.Run("keeps document order", func(t *testing.T) {
		data := []byte(`sad:
  - heartbreak
  - rainy day
happy:
  - feel good songs
energetic:
  - workout
`)
		catalog, err := ParseKeywords(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"sad", "happy", "energetic"}
		got := catalog.Labels()
		if len(got) != len(want) {
			t.Fatalf("expected %d labels, got %v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("label %d = %q, want %q", i, got[i], want[i])
			}
		}

		entries := catalog.Entries()
		if len(entries) != 4 {
			t.Fatalf("expected 4 entries, got %d", len(entries))
		}
		if entries[1].Label != "sad" || entries[1].Phrase != "rainy day" {
			t.Errorf("unexpected entry %+v", entries[1])
		}
	})

	tc := []struct {
		name string
		data string
	}{
		{name: "empty document", data: ""},
		{name: "sequence root", data: "- happy\n- sad\n"},
		{name: "scalar phrases", data: "happy: sunshine\n"},
		{name: "label without phrases", data: "happy: []\n"},
		{name: "blank phrase", data: "happy:\n  - \"  \"\n"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseKeywords([]byte(tt.data)); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadKeywordsFileMissing(t *testing.T) {
	if _, err := LoadKeywordsFile("/nonexistent/keywords.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
