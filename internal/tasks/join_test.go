package tasks

import (
	"testing"

	"github.com/desertthunder/moodset/internal/models"
	tu "github.com/desertthunder/moodset/internal/testing"
)

func info(id, name string, popularity int) models.InfoRecord {
	return models.NewInfoRecord(id, name, popularity)
}

func TestNormalizeInfo(t *testing.T) {
	a := info("a", "A", 10)
	got := NormalizeInfo([]*models.InfoRecord{&a, nil, nil})

	if len(got) != 3 {
		t.Fatalf("expected length preserved, got %d", len(got))
	}
	if got[0].ID == nil || *got[0].ID != "a" {
		t.Errorf("expected first record kept, got %+v", got[0])
	}
	for i := 1; i < 3; i++ {
		if !got[i].IsEmpty() {
			t.Errorf("position %d: expected empty record, got %+v", i, got[i])
		}
	}
}

func TestJoin(t *testing.T) {
	labels := LabelMap{"A": "happy", "B": "sad", "C": "calm"}

	t.Run("inner join drops one-sided ids", func(t *testing.T) {
		features := []*models.FeatureRecord{tu.Feature("A"), tu.Feature("B")}
		infos := []models.InfoRecord{info("B", "Bee", 50), info("C", "Sea", 20)}

		got := Join(features, infos, labels)
		if len(got) != 1 {
			t.Fatalf("expected exactly {B}, got %d rows", len(got))
		}
		row := got[0]
		if row.ID != "B" || row.Name != "Bee" || row.Popularity != 50 || row.Label != "sad" {
			t.Errorf("unexpected row %+v", row)
		}
		if row.Tempo != tu.Feature("B").Tempo {
			t.Errorf("expected features carried through, got tempo %v", row.Tempo)
		}
	})

	t.Run("null records on either side are dropped", func(t *testing.T) {
		features := []*models.FeatureRecord{nil, tu.Feature("A"), {ID: ""}, tu.Feature("B")}
		infos := NormalizeInfo([]*models.InfoRecord{nil, ptr(info("A", "Ay", 1)), nil, nil})

		got := Join(features, infos, labels)
		if len(got) != 1 || got[0].ID != "A" {
			t.Fatalf("expected only A, got %+v", got)
		}
	})

	t.Run("rows follow feature order", func(t *testing.T) {
		features := []*models.FeatureRecord{tu.Feature("C"), tu.Feature("A"), tu.Feature("B")}
		infos := []models.InfoRecord{info("A", "a", 1), info("B", "b", 2), info("C", "c", 3)}

		got := Join(features, infos, labels)
		want := []string{"C", "A", "B"}
		if len(got) != len(want) {
			t.Fatalf("expected %d rows, got %d", len(want), len(got))
		}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("row %d: got %s, want %s", i, got[i].ID, id)
			}
		}
	})

	t.Run("duplicate ids keep first occurrence", func(t *testing.T) {
		first := tu.Feature("A")
		second := tu.Feature("A")
		second.Tempo = 99
		infos := []models.InfoRecord{info("A", "first", 1), info("A", "second", 2)}

		got := Join([]*models.FeatureRecord{first, second}, infos, labels)
		if len(got) != 1 || got[0].Name != "first" || got[0].Tempo != first.Tempo {
			t.Errorf("expected first occurrence on both sides, got %+v", got)
		}
	})

	t.Run("unlabeled ids are dropped", func(t *testing.T) {
		got := Join([]*models.FeatureRecord{tu.Feature("Z")}, []models.InfoRecord{info("Z", "z", 0)}, labels)
		if len(got) != 0 {
			t.Errorf("expected no rows, got %+v", got)
		}
	})

	t.Run("nil name and popularity become zero values", func(t *testing.T) {
		id := "A"
		got := Join([]*models.FeatureRecord{tu.Feature("A")}, []models.InfoRecord{{ID: &id}}, labels)
		if len(got) != 1 || got[0].Name != "" || got[0].Popularity != 0 {
			t.Errorf("expected zero-valued metadata, got %+v", got)
		}
	})
}

func TestCountByLabel(t *testing.T) {
	records := []models.MergedRecord{{Label: "happy"}, {Label: "sad"}, {Label: "happy"}}
	counts := CountByLabel(records)
	if counts["happy"] != 2 || counts["sad"] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func ptr[T any](v T) *T { return &v }
