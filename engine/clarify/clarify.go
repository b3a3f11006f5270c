// Package clarify implements the fallback Q&A flow entered when a
// player action matches no known pattern. The session is a plain
// value advanced by a pure Step function; the caller owns rendering
// and owns invoking turn resolution when the session resolves.
package clarify

import (
	"strings"

	"github.com/nathoo/dmcore/types"
)

// A step collects one structured answer.
type step struct {
	Key    string
	Prompt string
}

var steps = []step{
	{Key: "goal", Prompt: "What is your goal? What outcome are you after?"},
	{Key: "approach", Prompt: "How do you go about it? Describe your method or means."},
	{Key: "risk", Prompt: "What cost or risk are you willing to accept? (effort, coin, supplies...)"},
}

// Intro is shown once when a session begins.
const Intro = "That action falls outside the usual rules — I need to pin down a few details."

// Session holds a clarification dialogue in progress. The zero value
// is not valid; use Start.
type Session struct {
	Original string
	Answers  map[string]string
	Index    int
}

// Resolved is the synthetic resolution produced when all steps have
// been answered.
type Resolved struct {
	Goal         string
	Approach     string
	Risk         string
	Skill        types.Skill
	Label        string
	RiskDeclared bool
}

// Start opens a session for an unmatched action and returns the first
// prompt.
func Start(original string) (Session, string) {
	return Session{
		Original: original,
		Answers:  map[string]string{},
	}, steps[0].Prompt
}

// Progress reports how many answers have been collected and how many
// steps there are in total.
func (s Session) Progress() (answered, total int) {
	return s.Index, len(steps)
}

// Step records answer for the current step and advances the session.
// While steps remain it returns the next prompt; once the final
// answer lands it returns the Resolved adjudication instead. The
// returned session is Idle (reusable only via Start) when done is
// non-nil.
func (s Session) Step(answer string) (Session, string, *Resolved) {
	s.Answers[steps[s.Index].Key] = strings.TrimSpace(answer)
	s.Index++

	if s.Index < len(steps) {
		return s, steps[s.Index].Prompt, nil
	}

	risk := s.Answers["risk"]
	skill, label := deriveSkill(s.Answers["approach"])
	return s, "", &Resolved{
		Goal:         s.Answers["goal"],
		Approach:     s.Answers["approach"],
		Risk:         risk,
		Skill:        skill,
		Label:        label,
		RiskDeclared: risk != "",
	}
}

// deriveSkill re-scans the approach answer against a narrower keyword
// set than the main classifier. No match means an improvised outcome:
// no skill, no roll bonus, fixed neutral difficulty.
func deriveSkill(approach string) (types.Skill, string) {
	lower := strings.ToLower(approach)

	contains := func(keywords ...string) bool {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("ritual", "rune", "research", "lore", "prepare", "tool", "study"):
		return types.SkillArcana, "Arcana"
	case contains("sneak", "evade", "silent", "hidden", "shadow", "tail", "ambush", "quiet"):
		return types.SkillStealth, "Stealth"
	case contains("talk", "persuade", "negotiate", "bargain", "plead", "appeal", "speech"):
		return types.SkillPersuasion, "Persuasion"
	default:
		return types.SkillNone, "Improvised"
	}
}
