package models

import (
	"testing"
	"time"
)

func TestKeywordCatalog(t *testing.T) {
	t.Run("Entries keep label then phrase order", func(t *testing.T) {
		c := NewKeywordCatalog()
		c.Add("sad", "heartbreak")
		c.Add(" happy ", "sunshine", "good vibes")
		c.Add("sad", "rainy day")

		want := []KeywordEntry{
			{Label: "sad", Phrase: "heartbreak"},
			{Label: "sad", Phrase: "rainy day"},
			{Label: "happy", Phrase: "sunshine"},
			{Label: "happy", Phrase: "good vibes"},
		}
		got := c.Entries()
		if len(got) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
			}
		}
		if c.Len() != 4 {
			t.Errorf("Len() = %d, want 4", c.Len())
		}
	})

	t.Run("accessors return copies", func(t *testing.T) {
		c := NewKeywordCatalog()
		c.Add("calm", "chill")
		c.Labels()[0] = "mutated"
		c.Phrases("calm")[0] = "mutated"
		if c.Labels()[0] != "calm" || c.Phrases("calm")[0] != "chill" {
			t.Error("catalog should not be mutable through accessors")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name  string
			build func() *KeywordCatalog
			ok    bool
		}{
			{name: "valid", build: func() *KeywordCatalog {
				c := NewKeywordCatalog()
				c.Add("happy", "sunshine")
				return c
			}, ok: true},
			{name: "empty", build: NewKeywordCatalog},
			{name: "label without phrases", build: func() *KeywordCatalog {
				c := NewKeywordCatalog()
				c.Add("happy")
				return c
			}},
			{name: "blank label", build: func() *KeywordCatalog {
				c := NewKeywordCatalog()
				c.Add("  ", "x")
				return c
			}},
			{name: "blank phrase", build: func() *KeywordCatalog {
				c := NewKeywordCatalog()
				c.Add("happy", " ")
				return c
			}},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.build().Validate()
				if tt.ok && err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if !tt.ok && err == nil {
					t.Error("expected validation error")
				}
			})
		}
	})
}

func TestInfoRecord(t *testing.T) {
	if !(InfoRecord{}).IsEmpty() {
		t.Error("zero InfoRecord should be empty")
	}
	r := NewInfoRecord("t1", "Song", 42)
	if r.IsEmpty() || *r.ID != "t1" || *r.Name != "Song" || *r.Popularity != 42 {
		t.Errorf("unexpected record %+v", r)
	}
}

func TestRunValidate(t *testing.T) {
	now := time.Now()
	valid := Run{ID: "r1", StartedAt: now, FinishedAt: now.Add(time.Second), Tracks: 3, Records: 2}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if valid.Duration() != time.Second {
		t.Errorf("Duration() = %v, want 1s", valid.Duration())
	}

	for name, r := range map[string]Run{
		"missing id":       {StartedAt: now, FinishedAt: now},
		"finish precedes":  {ID: "r", StartedAt: now, FinishedAt: now.Add(-time.Second)},
		"records > tracks": {ID: "r", StartedAt: now, FinishedAt: now, Tracks: 1, Records: 2},
	} {
		t.Run(name, func(t *testing.T) {
			if err := r.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
