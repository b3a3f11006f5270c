package clarify

import (
	"testing"

	"github.com/nathoo/dmcore/types"
)

func TestSession_ThreeStepFlow(t *testing.T) {
	sess, prompt := Start("tame the storm")
	if prompt == "" {
		t.Fatal("expected the first prompt")
	}
	if answered, total := sess.Progress(); answered != 0 || total != 3 {
		t.Fatalf("expected progress 0/3, got %d/%d", answered, total)
	}

	sess, prompt, done := sess.Step("calm the skies over the pass")
	if done != nil {
		t.Fatal("session resolved after one answer")
	}
	if prompt == "" {
		t.Fatal("expected the approach prompt")
	}

	sess, _, done = sess.Step("chant and trace runes in the air")
	if done != nil {
		t.Fatal("session resolved after two answers")
	}
	if answered, _ := sess.Progress(); answered != 2 {
		t.Fatalf("expected 2 answers recorded, got %d", answered)
	}

	_, _, done = sess.Step("a day of rest afterwards")
	if done == nil {
		t.Fatal("expected resolution after the final answer")
	}

	if done.Goal != "calm the skies over the pass" {
		t.Errorf("goal: got %q", done.Goal)
	}
	if done.Approach != "chant and trace runes in the air" {
		t.Errorf("approach: got %q", done.Approach)
	}
	if done.Risk != "a day of rest afterwards" || !done.RiskDeclared {
		t.Errorf("risk: got %q declared=%v", done.Risk, done.RiskDeclared)
	}
	// "runes" carries the rune cue.
	if done.Skill != types.SkillArcana || done.Label != "Arcana" {
		t.Errorf("expected arcana from the approach, got %s/%s", done.Skill, done.Label)
	}
}

func TestSession_BlankRiskNotDeclared(t *testing.T) {
	sess, _ := Start("x")
	sess, _, _ = sess.Step("goal")
	sess, _, _ = sess.Step("approach")
	_, _, done := sess.Step("   ")
	if done == nil {
		t.Fatal("expected resolution")
	}
	if done.RiskDeclared {
		t.Error("whitespace risk answer should not count as declared")
	}
}

func TestDeriveSkill(t *testing.T) {
	tests := []struct {
		approach string
		skill    types.Skill
		label    string
	}{
		{"research the lore in my grimoire", types.SkillArcana, "Arcana"},
		{"prepare my tools overnight", types.SkillArcana, "Arcana"},
		{"stay silent and keep to the shadows", types.SkillStealth, "Stealth"},
		{"tail the courier from a distance", types.SkillStealth, "Stealth"},
		{"talk my way past the steward", types.SkillPersuasion, "Persuasion"},
		{"make an appeal to their mercy", types.SkillPersuasion, "Persuasion"},
		{"pure stubbornness", types.SkillNone, "Improvised"},
		{"", types.SkillNone, "Improvised"},
	}

	for _, tt := range tests {
		skill, label := deriveSkill(tt.approach)
		if skill != tt.skill || label != tt.label {
			t.Errorf("%q: got %s/%s, want %s/%s", tt.approach, skill, label, tt.skill, tt.label)
		}
	}
}
