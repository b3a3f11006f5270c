// Package classify maps free-text player actions to skill tags.
// Intentionally dumb: an ordered keyword list, no NLP, no scoring.
package classify

import (
	"strings"

	"github.com/nathoo/dmcore/types"
)

// pattern ties a set of trigger keywords to the tag they produce.
type pattern struct {
	keywords []string
	tag      types.ActionTag
}

// patterns is evaluated in order; the first pattern with any keyword
// found in the input wins. Order is significant and fixed:
// investigation outranks attack so "search for the hidden blade"
// reads as a search, not a fight.
var patterns = []pattern{
	{
		keywords: []string{"investigate", "search", "examine", "inspect", "study"},
		tag:      types.ActionTag{Skill: types.SkillArcana, Label: "Investigation"},
	},
	{
		keywords: []string{"sneak", "stealth", "hide", "creep", "slip past"},
		tag:      types.ActionTag{Skill: types.SkillStealth, Label: "Stealth"},
	},
	{
		keywords: []string{"persuade", "negotiate", "convince", "plead", "bargain", "beg"},
		tag:      types.ActionTag{Skill: types.SkillPersuasion, Label: "Persuasion"},
	},
	{
		keywords: []string{"cast", "ritual", "arcane", "spell", "invoke"},
		tag:      types.ActionTag{Skill: types.SkillArcana, Label: "Arcana"},
	},
	{
		keywords: []string{"attack", "strike", "slash", "stab", "shoot", "swing", "smash"},
		tag:      types.ActionTag{Skill: types.SkillAttack, Label: "Attack"},
	},
}

// Classify returns the tag for the first matching pattern, or false
// if no pattern matches (which routes the input into clarification).
func Classify(text string) (types.ActionTag, bool) {
	lower := strings.ToLower(text)
	for _, p := range patterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				return p.tag, true
			}
		}
	}
	return types.ActionTag{Skill: types.SkillNone}, false
}
