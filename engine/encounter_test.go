package engine

import "testing"

func TestMaybeEncounter_NeverAtZeroDanger(t *testing.T) {
	table := DefaultEncounters()

	for seed := int64(0); seed < 50; seed++ {
		rng := NewRNG(seed)
		for i := 0; i < 100; i++ {
			if _, ok := maybeEncounter(rng, table, 0); ok {
				t.Fatalf("seed %d: encounter fired at danger 0", seed)
			}
			if _, ok := maybeEncounter(rng, table, -1); ok {
				t.Fatalf("seed %d: encounter fired at negative danger", seed)
			}
		}
	}
}

func TestMaybeEncounter_EmptyTable(t *testing.T) {
	rng := NewRNG(1)

	for i := 0; i < 100; i++ {
		if _, ok := maybeEncounter(rng, nil, 3); ok {
			t.Fatal("encounter fired with no table")
		}
	}
}

func TestMaybeEncounter_Rate(t *testing.T) {
	rng := NewRNG(12345)
	table := DefaultEncounters()

	const trials = 10000
	hits := 0
	for i := 0; i < trials; i++ {
		if _, ok := maybeEncounter(rng, table, 2); ok {
			hits++
		}
	}

	// Fixed 25% gate regardless of danger level, wide margin.
	if hits < 2000 || hits > 3000 {
		t.Errorf("expected ~2500 encounters, got %d", hits)
	}
}

func TestMaybeEncounter_WeightedTexts(t *testing.T) {
	rng := NewRNG(99)
	table := EncounterTable{
		{Weight: 3, Kind: "rumor", Text: "rumor"},
		{Weight: 2, Kind: "combat", Text: "combat"},
		{Weight: 1, Kind: "boon", Text: "boon"},
	}

	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		if text, ok := maybeEncounter(rng, table, 5); ok {
			counts[text]++
		}
	}

	// All three rows should surface, heaviest most often.
	if counts["rumor"] == 0 || counts["combat"] == 0 || counts["boon"] == 0 {
		t.Fatalf("expected all rows selected, got %v", counts)
	}
	if counts["rumor"] <= counts["boon"] {
		t.Errorf("expected weight 3 row above weight 1 row, got %v", counts)
	}
}
