package engine

// EncounterEntry is one weighted row of an encounter table.
type EncounterEntry struct {
	Weight int
	Kind   string
	Text   string
}

// EncounterTable is a weighted random table. Selection probability is
// weight over the sum of weights.
type EncounterTable []EncounterEntry

// encounterPercent is the fixed trigger chance per resolved turn.
const encounterPercent = 25

// DefaultEncounters returns the built-in table used when no campaign
// file supplies one.
func DefaultEncounters() EncounterTable {
	return EncounterTable{
		{Weight: 3, Kind: "rumor", Text: "A roadside stone post bears sigils of the old kingdom, pointing toward a ruined well in the woods."},
		{Weight: 2, Kind: "combat", Text: "Two cloaked scouts crouch behind a fallen log, whispering about a courier."},
		{Weight: 1, Kind: "boon", Text: "A faintly glowing ash-leaf herb; ground up, it grants +1 to a single roll."},
	}
}

// maybeEncounter rolls the encounter gate: never at danger <= 0,
// otherwise a fixed 25% chance followed by weighted selection.
func maybeEncounter(rng *RNG, table EncounterTable, danger int) (string, bool) {
	if danger <= 0 || len(table) == 0 {
		return "", false
	}
	if !rng.Chance(encounterPercent) {
		return "", false
	}

	weights := make([]int, len(table))
	for i, e := range table {
		weights[i] = e.Weight
	}
	return table[rng.WeightedSelect(weights)].Text, true
}
