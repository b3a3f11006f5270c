// Package state manages the world-state record: defaults, deep
// copies for snapshot-and-commit, the world clock, and the bounded
// edit operations for inventory, quests, and campaign setup.
package state

import (
	"fmt"
	"strings"

	"github.com/nathoo/dmcore/types"
)

// Default returns a fresh starting world state.
func Default() *types.WorldState {
	return &types.WorldState{
		Clock: types.Clock{Day: 1, Phase: types.PhaseMorning},
		Location: types.Location{
			Name:   "Ashmere, Edge of the Grey Road",
			Danger: 2,
			Tags:   []string{"market", "adventurer-hub"},
		},
		Weather: types.WeatherClear,
		Player: types.Player{
			Name:  "Asha",
			Class: "Blood Mage",
			HP:    12,
			AC:    12,
			Skills: map[string]int{
				"arcana":     4,
				"stealth":    1,
				"persuasion": 0,
			},
			Traits:    []string{"undying"},
			Inventory: []string{"ritual dagger", "bandages", "coin pouch"},
		},
		Quests: []types.Quest{
			{ID: "Q001", Name: "The Missing Courier", Stage: 0, Notes: "Last seen near the northern treeline"},
		},
	}
}

// Clone returns a deep copy of ws. Snapshots taken before a turn are
// fully independent of the live state until committed.
func Clone(ws *types.WorldState) *types.WorldState {
	out := *ws

	out.Location.Tags = append([]string(nil), ws.Location.Tags...)
	out.Player.Traits = append([]string(nil), ws.Player.Traits...)
	out.Player.Inventory = append([]string(nil), ws.Player.Inventory...)
	out.Campaign.Themes = append([]string(nil), ws.Campaign.Themes...)
	out.Quests = append([]types.Quest(nil), ws.Quests...)

	out.Player.Skills = make(map[string]int, len(ws.Player.Skills))
	for k, v := range ws.Player.Skills {
		out.Player.Skills[k] = v
	}

	return &out
}

// phaseOrder is the fixed clock sequence.
var phaseOrder = []types.Phase{
	types.PhaseMorning,
	types.PhaseNoon,
	types.PhaseEvening,
	types.PhaseNight,
}

// AdvanceClock steps the phase forward; wrapping from night to
// morning increments the day.
func AdvanceClock(ws *types.WorldState) {
	idx := 0
	for i, p := range phaseOrder {
		if p == ws.Clock.Phase {
			idx = i
			break
		}
	}
	idx = (idx + 1) % len(phaseOrder)
	if idx == 0 {
		ws.Clock.Day++
	}
	ws.Clock.Phase = phaseOrder[idx]
}

// AddItem appends a named item to the inventory. Blank names are
// rejected.
func AddItem(ws *types.WorldState, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	ws.Player.Inventory = append(ws.Player.Inventory, name)
	return true
}

// RemoveItem removes the inventory slot at index, returning the
// removed item. Out-of-range indexes are a no-op.
func RemoveItem(ws *types.WorldState, index int) (string, bool) {
	inv := ws.Player.Inventory
	if index < 0 || index >= len(inv) {
		return "", false
	}
	item := inv[index]
	ws.Player.Inventory = append(inv[:index:index], inv[index+1:]...)
	return item, true
}

// AddQuest appends a new quest at stage 0 with a sequential ID.
func AddQuest(ws *types.WorldState, name string) (types.Quest, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Quest{}, false
	}
	q := types.Quest{
		ID:    fmt.Sprintf("Q%03d", len(ws.Quests)+1),
		Name:  name,
		Stage: 0,
	}
	ws.Quests = append(ws.Quests, q)
	return q, true
}

// AdvanceQuest shifts the stage of the quest at index by delta.
// Out-of-range indexes are a no-op.
func AdvanceQuest(ws *types.WorldState, index, delta int) (types.Quest, bool) {
	if index < 0 || index >= len(ws.Quests) {
		return types.Quest{}, false
	}
	ws.Quests[index].Stage += delta
	return ws.Quests[index], true
}

// Normalize repairs a state loaded from disk or import: nil maps and
// slices become empty, the day floor is 1, danger cannot go negative,
// and unknown phases or weather fall back to defaults. Skill values
// are left untouched — they are unbounded by design.
func Normalize(ws *types.WorldState) {
	if ws.Clock.Day < 1 {
		ws.Clock.Day = 1
	}
	valid := false
	for _, p := range phaseOrder {
		if ws.Clock.Phase == p {
			valid = true
			break
		}
	}
	if !valid {
		ws.Clock.Phase = types.PhaseMorning
	}
	switch ws.Weather {
	case types.WeatherClear, types.WeatherRain, types.WeatherFog, types.WeatherStorm:
	default:
		ws.Weather = types.WeatherClear
	}
	if ws.Location.Danger < 0 {
		ws.Location.Danger = 0
	}
	if ws.Location.Tags == nil {
		ws.Location.Tags = []string{}
	}
	if ws.Player.Skills == nil {
		ws.Player.Skills = map[string]int{}
	}
	if ws.Player.Traits == nil {
		ws.Player.Traits = []string{}
	}
	if ws.Player.Inventory == nil {
		ws.Player.Inventory = []string{}
	}
	if ws.Quests == nil {
		ws.Quests = []types.Quest{}
	}
	if ws.Campaign.Themes == nil {
		ws.Campaign.Themes = []string{}
	}
}
