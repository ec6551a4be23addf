package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/flappy-evolve/internal/registry"
	"github.com/vovakirdan/flappy-evolve/internal/storage"
)

func tempStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPrintVariantsWithStats(t *testing.T) {
	store := tempStore(t)
	for _, s := range []int{3, 9} {
		if _, err := store.SaveScore("flappy", s); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.SaveScore("flappy_skeleton", 1); err != nil {
		t.Fatal(err)
	}
	stats, err := store.GetAllGamesStats()
	if err != nil {
		t.Fatal(err)
	}

	games := []registry.GameInfo{
		{ID: "flappy", Description: "Play", Scored: true},
		{ID: "flappy_ai", Description: "Train", Scored: false},
		{ID: "flappy_skeleton", Description: "Physics", Scored: true},
	}
	var buf bytes.Buffer
	printVariants(&buf, games, stats)

	lines := strings.Split(buf.String(), "\n")
	find := func(id string) []string {
		for _, l := range lines {
			if f := strings.Fields(l); len(f) > 0 && f[0] == id {
				return f
			}
		}
		t.Fatalf("no line for %s in:\n%s", id, buf.String())
		return nil
	}

	tests := []struct {
		id, best, played string
	}{
		{"flappy", "9", "2"},
		{"flappy_skeleton", "1", "1"},
		{"flappy_ai", "-", "-"},
	}
	for _, tt := range tests {
		f := find(tt.id)
		if f[1] != tt.best || f[2] != tt.played {
			t.Errorf("%s: best=%s played=%s, expected %s/%s", tt.id, f[1], f[2], tt.best, tt.played)
		}
	}
	if !strings.Contains(buf.String(), "Train (unscored)") {
		t.Error("unscored variants should be marked")
	}
}

func TestPrintVariantsWithoutDatabase(t *testing.T) {
	var buf bytes.Buffer
	printVariants(&buf, []registry.GameInfo{{ID: "flappy", Description: "Play", Scored: true}}, nil)
	if !strings.Contains(buf.String(), "flappy  -     ") {
		t.Errorf("missing placeholders:\n%s", buf.String())
	}
}

func TestPrintScoresAll(t *testing.T) {
	store := tempStore(t)
	for _, s := range []int{4, 12, 7, 1} {
		if _, err := store.SaveScore("flappy", s); err != nil {
			t.Fatal(err)
		}
	}
	all, err := store.AllScores("flappy")
	if err != nil {
		t.Fatal(err)
	}
	stats, err := store.GetGameStats("flappy")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printScores(&buf, registry.GameInfo{ID: "flappy", Title: "Flappy Bird"}, all, stats)
	out := buf.String()

	for _, want := range []string{"High Scores - Flappy Bird", "1     12", "4     1 ", "Best: 12   Games: 4   Average: 6.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintScoresEmpty(t *testing.T) {
	var buf bytes.Buffer
	printScores(&buf, registry.GameInfo{ID: "flappy_skeleton", Title: "Skeleton"}, nil, nil)
	if !strings.Contains(buf.String(), "flappy play flappy_skeleton") {
		t.Errorf("empty list should suggest playing:\n%s", buf.String())
	}
}
