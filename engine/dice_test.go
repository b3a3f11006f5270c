package engine

import (
	"fmt"
	"testing"
)

func TestRollD20_AlwaysDrawsTwoDice(t *testing.T) {
	rng := NewRNG(42)

	for i := 0; i < 100; i++ {
		r := RollD20(rng, 0, 0)
		if r.Roll1 < 1 || r.Roll1 > 20 || r.Roll2 < 1 || r.Roll2 > 20 {
			t.Fatalf("dice out of range: r1=%d r2=%d", r.Roll1, r.Roll2)
		}
	}
	// Two draws per check, even with no bias.
	if rng.Position() != 200 {
		t.Errorf("expected 200 RNG calls for 100 checks, got %d", rng.Position())
	}
}

func TestRollD20_Advantage(t *testing.T) {
	rng := NewRNG(7)

	for i := 0; i < 200; i++ {
		r := RollD20(rng, 3, 1)
		want := max(r.Roll1, r.Roll2) + 3
		if r.Total != want {
			t.Fatalf("advantage total: got %d, want %d (r1=%d r2=%d)", r.Total, want, r.Roll1, r.Roll2)
		}
		if r.Picked != fmt.Sprintf("max(%d,%d)", r.Roll1, r.Roll2) {
			t.Fatalf("advantage picked: got %q", r.Picked)
		}
	}
}

func TestRollD20_Disadvantage(t *testing.T) {
	rng := NewRNG(7)

	for i := 0; i < 200; i++ {
		r := RollD20(rng, -1, -1)
		want := min(r.Roll1, r.Roll2) - 1
		if r.Total != want {
			t.Fatalf("disadvantage total: got %d, want %d (r1=%d r2=%d)", r.Total, want, r.Roll1, r.Roll2)
		}
		if r.Picked != fmt.Sprintf("min(%d,%d)", r.Roll1, r.Roll2) {
			t.Fatalf("disadvantage picked: got %q", r.Picked)
		}
	}
}

func TestRollD20_Neutral_UsesFirstDie(t *testing.T) {
	rng := NewRNG(7)

	for i := 0; i < 200; i++ {
		r := RollD20(rng, 2, 0)
		if r.Total != r.Roll1+2 {
			t.Fatalf("neutral total: got %d, want %d", r.Total, r.Roll1+2)
		}
		if r.Picked != fmt.Sprintf("%d", r.Roll1) {
			t.Fatalf("neutral picked: got %q", r.Picked)
		}
	}
}

func TestRollMany_CountAndRange(t *testing.T) {
	rng := NewRNG(3)

	rolls := RollMany(rng, 4, 6)
	if len(rolls) != 4 {
		t.Fatalf("expected 4 rolls, got %d", len(rolls))
	}
	for i, r := range rolls {
		if r < 1 || r > 6 {
			t.Fatalf("roll %d out of range [1,6]: %d", i, r)
		}
	}
}

func TestParseRollSpec(t *testing.T) {
	tests := []struct {
		spec    string
		count   int
		faces   int
		mod     int
		wantErr bool
	}{
		{spec: "2d6+3", count: 2, faces: 6, mod: 3},
		{spec: "d20", count: 1, faces: 20, mod: 0},
		{spec: "1d20-2", count: 1, faces: 20, mod: -2},
		{spec: "3D8", count: 3, faces: 8, mod: 0},
		{spec: " 2d10+1 ", count: 2, faces: 10, mod: 1},
		{spec: "0d6", count: 1, faces: 6},   // count clamped up
		{spec: "2d1", count: 2, faces: 2},   // faces clamped up
		{spec: "banana", wantErr: true},
		{spec: "2d", wantErr: true},
		{spec: "xd6", wantErr: true},
		{spec: "2d6+x", wantErr: true},
	}

	for _, tt := range tests {
		count, faces, mod, err := ParseRollSpec(tt.spec)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error, got %d/%d/%d", tt.spec, count, faces, mod)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.spec, err)
			continue
		}
		if count != tt.count || faces != tt.faces || mod != tt.mod {
			t.Errorf("%q: got %d/%d/%d, want %d/%d/%d", tt.spec, count, faces, mod, tt.count, tt.faces, tt.mod)
		}
	}
}
