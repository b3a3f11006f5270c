package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// D20Roll is the raw outcome of a d20 check roll, before a difficulty
// is applied. Both dice are always drawn so the audit trail is
// identical whether or not a bias was in play.
type D20Roll struct {
	Roll1    int
	Roll2    int
	Picked   string
	Modifier int
	Total    int
}

// RollD20 rolls a d20 check with the given modifier and bias.
// bias > 0 picks the higher die (advantage), bias < 0 the lower
// (disadvantage), bias == 0 the first die.
func RollD20(rng *RNG, modifier, bias int) D20Roll {
	r1 := rng.Roll(20)
	r2 := rng.Roll(20)

	base := r1
	picked := strconv.Itoa(r1)
	switch {
	case bias > 0:
		base = max(r1, r2)
		picked = fmt.Sprintf("max(%d,%d)", r1, r2)
	case bias < 0:
		base = min(r1, r2)
		picked = fmt.Sprintf("min(%d,%d)", r1, r2)
	}

	return D20Roll{
		Roll1:    r1,
		Roll2:    r2,
		Picked:   picked,
		Modifier: modifier,
		Total:    base + modifier,
	}
}

// RollMany returns count independent draws in [1, faces]. Callers are
// responsible for clamping count to at least 1 and faces to at least 2
// before invocation; the engine stays pure.
func RollMany(rng *RNG, count, faces int) []int {
	results := make([]int, count)
	for i := range results {
		results[i] = rng.Roll(faces)
	}
	return results
}

// ParseRollSpec parses a dice expression of the form "NdX", "dX",
// "NdX+M" or "NdX-M" (e.g. "2d6+3"). Count and faces are clamped to
// their minimums of 1 and 2.
func ParseRollSpec(spec string) (count, faces, modifier int, err error) {
	s := strings.ToLower(strings.TrimSpace(spec))

	var modStr string
	if i := strings.IndexAny(s, "+-"); i > 0 {
		modStr = s[i:]
		s = s[:i]
	}

	countStr, facesStr, ok := strings.Cut(s, "d")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid dice spec %q", spec)
	}

	count = 1
	if countStr != "" {
		count, err = strconv.Atoi(countStr)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid dice count in %q", spec)
		}
	}
	faces, err = strconv.Atoi(facesStr)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid dice faces in %q", spec)
	}
	if modStr != "" {
		modifier, err = strconv.Atoi(modStr)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid modifier in %q", spec)
		}
	}

	if count < 1 {
		count = 1
	}
	if faces < 2 {
		faces = 2
	}
	return count, faces, modifier, nil
}
