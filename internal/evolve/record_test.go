package evolve

import (
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/flappy-evolve/internal/games/flappy"
)

func TestGenomeRecordRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := mustGenome(t, 12, rng)
	m := testMutator(NewTracker())
	m.addNode(g, rng)
	m.addNode(g, rng)
	m.addLink(g, rng)

	rec, err := NewGenomeRecord(g, 4, 17.5, 2)
	if err != nil {
		t.Fatalf("NewGenomeRecord() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "runs", "best.yaml")
	if err := SaveGenome(path, rec); err != nil {
		t.Fatalf("SaveGenome() error = %v", err)
	}
	loaded, err := LoadGenome(path)
	if err != nil {
		t.Fatalf("LoadGenome() error = %v", err)
	}
	if loaded.ID != 12 || loaded.Generation != 4 || loaded.Fitness != 17.5 || loaded.Score != 2 {
		t.Errorf("loaded header = %+v", loaded)
	}

	rebuilt, err := loaded.Genome()
	if err != nil {
		t.Fatalf("Genome() error = %v", err)
	}
	if len(rebuilt.Nodes) != len(g.Nodes) || len(rebuilt.Genes) != len(g.Genes) {
		t.Fatalf("rebuilt %d nodes, %d genes; expected %d, %d",
			len(rebuilt.Nodes), len(rebuilt.Genes), len(g.Nodes), len(g.Genes))
	}

	want, err := NewBrain(g, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	got, err := NewBrain(rebuilt, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	for _, obs := range []flappy.Observation{
		{Y: 350, DTop: 50, DBottom: 150},
		{Y: 100, DTop: 250, DBottom: 450},
		{Y: 700, DTop: 300, DBottom: 100},
	} {
		a, errA := want.Think(obs)
		b, errB := got.Think(obs)
		if errA != nil || errB != nil {
			t.Fatalf("Think() errors: %v, %v", errA, errB)
		}
		if a != b {
			t.Errorf("output for %+v = %v, expected %v", obs, b, a)
		}
	}
}

func TestGenomeRecordErrors(t *testing.T) {
	valid := func() GenomeRecord {
		rec, err := NewGenomeRecord(mustGenome(t, 1, rand.New(rand.NewSource(2))), 1, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		return rec
	}

	tests := []struct {
		name   string
		mutate func(*GenomeRecord)
	}{
		{"no nodes", func(r *GenomeRecord) { r.Nodes = nil }},
		{"unknown neuron type", func(r *GenomeRecord) { r.Nodes[0].Type = "sensor" }},
		{"unknown activation", func(r *GenomeRecord) { r.Nodes[4].Activation = "relu" }},
		{"duplicate node", func(r *GenomeRecord) { r.Nodes[1].ID = r.Nodes[0].ID }},
		{"dangling gene", func(r *GenomeRecord) { r.Genes[0].In = 99 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := valid()
			tc.mutate(&rec)
			if _, err := rec.Genome(); err == nil {
				t.Error("Genome() should fail")
			}
		})
	}
}

func TestParseGenomeRejectsGarbage(t *testing.T) {
	if _, err := ParseGenome([]byte("nodes: [oops")); err == nil {
		t.Error("ParseGenome() should fail on malformed YAML")
	}
	if _, err := LoadGenome(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadGenome() should fail on a missing file")
	}
}

func TestGenomeRecordYAMLLayout(t *testing.T) {
	rec, err := NewGenomeRecord(mustGenome(t, 3, rand.New(rand.NewSource(3))), 2, 1.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "g.yaml")
	if err := SaveGenome(path, rec); err != nil {
		t.Fatal(err)
	}
	loaded, _ := LoadGenome(path)
	if loaded.Nodes[3].Type != "bias" || loaded.Nodes[4].Activation != "tanh" {
		t.Errorf("nodes = %+v", loaded.Nodes)
	}
	if !strings.EqualFold(loaded.Nodes[0].Type, "input") {
		t.Errorf("first node type = %q, expected input", loaded.Nodes[0].Type)
	}
}
