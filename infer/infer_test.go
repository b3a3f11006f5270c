package infer

import (
	"context"
	"testing"
)

func TestDecodeSuggestion_PlainJSON(t *testing.T) {
	sug, err := decodeSuggestion(`{"difficultyDelta": 1, "advantageBias": -1, "notes": ["heavy patrols"]}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sug.DifficultyDelta != 1 || sug.AdvantageBias != -1 {
		t.Errorf("got delta %d bias %d", sug.DifficultyDelta, sug.AdvantageBias)
	}
	if len(sug.Notes) != 1 || sug.Notes[0] != "heavy patrols" {
		t.Errorf("notes: %v", sug.Notes)
	}
}

func TestDecodeSuggestion_StripsCodeFences(t *testing.T) {
	raw := "```json\n{\"difficultyDelta\": -1, \"advantageBias\": 0, \"notes\": []}\n```"
	sug, err := decodeSuggestion(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sug.DifficultyDelta != -1 || sug.AdvantageBias != 0 {
		t.Errorf("got delta %d bias %d", sug.DifficultyDelta, sug.AdvantageBias)
	}
}

func TestDecodeSuggestion_ClampsFields(t *testing.T) {
	sug, err := decodeSuggestion(`{"difficultyDelta": 10, "advantageBias": -5}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sug.DifficultyDelta != 2 {
		t.Errorf("delta should clamp to 2, got %d", sug.DifficultyDelta)
	}
	if sug.AdvantageBias != -1 {
		t.Errorf("bias should clamp to -1, got %d", sug.AdvantageBias)
	}
	if sug.Notes == nil {
		t.Error("absent notes should decode to an empty slice")
	}
}

func TestDecodeSuggestion_Malformed(t *testing.T) {
	for _, raw := range []string{
		"The difficulty should go up by one.",
		"```json\nnot json\n```",
		"",
	} {
		if _, err := decodeSuggestion(raw); err == nil {
			t.Errorf("%q: expected error", raw)
		}
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), "", "gemini-2.5-flash"); err == nil {
		t.Error("expected error for missing API key")
	}
}
