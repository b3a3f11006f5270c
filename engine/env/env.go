// Package env computes environment effects for skill checks: a
// deterministic local rule set, optionally merged with a suggestion
// from an external inference capability. The merge is a pure function
// and the external call can never fail the caller.
package env

import (
	"context"
	"slices"
	"strings"

	"github.com/nathoo/dmcore/types"
)

// Request is the context handed to an external suggester.
type Request struct {
	Skill           types.Skill    `json:"skill"`
	ActionText      string         `json:"actionText"`
	TimeOfDay       types.Phase    `json:"timeOfDay"`
	Danger          int            `json:"danger"`
	LocationName    string         `json:"locationName"`
	LocationTags    []string       `json:"locationTags"`
	Weather         types.Weather  `json:"weather"`
	PlayerSkills    map[string]int `json:"playerSkills"`
	PlayerTraits    []string       `json:"playerTraits"`
	CampaignContext string         `json:"campaignContext"`
}

// Suggestion is an external adjustment proposal. Fields arrive
// pre-clamped by the adapter: DifficultyDelta in [-2,2],
// AdvantageBias in {-1,0,1}.
type Suggestion struct {
	DifficultyDelta int
	AdvantageBias   int
	Notes           []string
}

// Suggester is the optional external inference capability.
type Suggester interface {
	Suggest(ctx context.Context, req Request) (*Suggestion, error)
}

// Tags with mechanical meaning on locations.
const (
	TagMarket        = "market"
	TagAdventurerHub = "adventurer-hub"
)

// Local computes the deterministic environment effect for a check:
// independent additive contributions from time of day, location tags,
// weather, and keyword cues in the action text, each with a
// human-readable note. AdvantageBias is clamped to [-1,1]; the
// difficulty delta is left unclamped here (clamping happens after the
// merge).
func Local(ws *types.WorldState, skill types.Skill, text string) types.EnvironmentEffect {
	var eff types.EnvironmentEffect
	lower := strings.ToLower(text)

	note := func(dcDelta, bias int, n string) {
		eff.DifficultyDelta += dcDelta
		eff.AdvantageBias += bias
		eff.Notes = append(eff.Notes, n)
	}

	// Time of day.
	switch ws.Clock.Phase {
	case types.PhaseNight:
		if skill == types.SkillStealth {
			note(0, 1, "night veils you: stealth advantage")
		}
		if skill == types.SkillPersuasion {
			note(0, -1, "nobody welcomes night callers: persuasion disadvantage")
		}
		if skill == types.SkillAttack {
			note(1, 0, "poor light: attacking is harder")
		}
	case types.PhaseEvening:
		if skill == types.SkillPersuasion {
			note(0, 1, "evening crowds are lively: persuasion advantage")
		}
	}

	// Location tags.
	if slices.Contains(ws.Location.Tags, TagMarket) {
		if skill == types.SkillPersuasion {
			note(0, 1, "haggling grounds: persuasion advantage")
		}
		if skill == types.SkillStealth {
			note(0, -1, "stalls and lantern light everywhere: stealth disadvantage")
		}
	}
	if slices.Contains(ws.Location.Tags, TagAdventurerHub) {
		if skill == types.SkillArcana {
			note(0, 1, "veterans to consult: knowledge advantage")
		}
	}

	// Weather.
	if ws.Weather == types.WeatherRain {
		if skill == types.SkillStealth {
			note(0, 1, "rain muffles your steps: stealth advantage")
		}
		if skill == types.SkillAttack {
			note(0, -1, "slick footing: attack disadvantage")
		}
		if skill == types.SkillPersuasion {
			note(1, 0, "rain drowns conversation: persuasion is harder")
		}
	}

	// Free-text cues, order-independent.
	if containsAny(lower, "dark", "dim", "shadow", "unlit", "gloom", "no light") {
		if skill == types.SkillStealth {
			note(0, 1, "low light: stealth advantage")
		}
		if skill == types.SkillAttack {
			note(1, 0, "poor visibility: attacking is harder")
		}
	}
	if containsAny(lower, "crowd", "noisy", "din", "rowdy", "packed") {
		if skill == types.SkillPersuasion {
			note(1, 0, "noisy surroundings: persuasion is harder")
		}
	}

	// Stacked same-direction contributions never exceed one
	// advantage/disadvantage step.
	eff.AdvantageBias = clamp(eff.AdvantageBias, -1, 1)
	return eff
}

// Merge folds an external suggestion into the local effect. With no
// suggestion the local effect is returned unchanged. The merged
// difficulty delta is clamped to [-3,3]. Opposite nonzero biases
// cancel to zero.
func Merge(local types.EnvironmentEffect, ai *Suggestion) types.EnvironmentEffect {
	if ai == nil {
		return local
	}

	bias := local.AdvantageBias
	switch {
	case ai.AdvantageBias == 0:
		// keep local
	case bias == 0:
		bias = ai.AdvantageBias
	case ai.AdvantageBias == bias:
		// same direction, keep
	default:
		bias = 0
	}

	notes := make([]string, 0, len(local.Notes)+len(ai.Notes))
	notes = append(notes, local.Notes...)
	notes = append(notes, ai.Notes...)

	return types.EnvironmentEffect{
		DifficultyDelta: clamp(local.DifficultyDelta+ai.DifficultyDelta, -3, 3),
		AdvantageBias:   bias,
		Notes:           notes,
	}
}

// Resolve computes the hybrid environment effect. The suggester is
// optional; any error or nil suggestion degrades to the local effect.
// The caller bounds the wait via ctx.
func Resolve(ctx context.Context, ws *types.WorldState, skill types.Skill, text string, sg Suggester) types.EnvironmentEffect {
	local := Local(ws, skill, text)
	if sg == nil {
		return local
	}

	ai, err := sg.Suggest(ctx, NewRequest(ws, skill, text))
	if err != nil {
		return local
	}
	return Merge(local, ai)
}

// NewRequest assembles the suggester request from world state.
func NewRequest(ws *types.WorldState, skill types.Skill, text string) Request {
	campaign := ws.Campaign.Title
	if ws.Campaign.Rules != "" {
		if campaign != "" {
			campaign += " — "
		}
		campaign += ws.Campaign.Rules
	}
	return Request{
		Skill:           skill,
		ActionText:      text,
		TimeOfDay:       ws.Clock.Phase,
		Danger:          ws.Location.Danger,
		LocationName:    ws.Location.Name,
		LocationTags:    ws.Location.Tags,
		Weather:         ws.Weather,
		PlayerSkills:    ws.Player.Skills,
		PlayerTraits:    ws.Player.Traits,
		CampaignContext: campaign,
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
