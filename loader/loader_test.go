package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nathoo/dmcore/types"
)

func writeCampaign(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "campaign.lua")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing campaign file: %v", err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	ws, table, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ws.Location.Name == "" || ws.Player.Name == "" {
		t.Errorf("expected default world, got %+v", ws)
	}
	if len(table) == 0 {
		t.Error("expected default encounter table")
	}
}

func TestLoad_FullCampaign(t *testing.T) {
	path := writeCampaign(t, `
campaign{
    title = "The Drowned March",
    themes = {"mud", "omens"},
    rules = "grim and low magic",
}

world{
    day = 2,
    phase = "evening",
    weather = "rain",
    location = {
        name = "Saltmere Causeway",
        danger = 3,
        tags = {"market"},
    },
    player = {
        name = "Brona",
        class = "Warden",
        hp = 14,
        ac = 13,
        skills = { arcana = 1, stealth = 3, persuasion = 2 },
        traits = {"marsh-born"},
        inventory = {"waxed cloak"},
    },
    quests = {
        { name = "Silence the Bells", stage = 1, notes = "They ring at low tide" },
    },
}

encounter{ weight = 4, kind = "rumor", text = "A fisher swears the bells ring underwater." }
encounter{ weight = 1, kind = "combat", text = "Something drags itself out of the reeds." }
`)

	ws, table, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if ws.Campaign.Title != "The Drowned March" || !ws.Campaign.SetupDone {
		t.Errorf("campaign: %+v", ws.Campaign)
	}
	if len(ws.Campaign.Themes) != 2 {
		t.Errorf("themes: %v", ws.Campaign.Themes)
	}
	if ws.Clock.Day != 2 || ws.Clock.Phase != types.PhaseEvening {
		t.Errorf("clock: %+v", ws.Clock)
	}
	if ws.Weather != types.WeatherRain {
		t.Errorf("weather: %s", ws.Weather)
	}
	if ws.Location.Name != "Saltmere Causeway" || ws.Location.Danger != 3 {
		t.Errorf("location: %+v", ws.Location)
	}
	if ws.Player.Name != "Brona" || ws.Player.Skills["stealth"] != 3 {
		t.Errorf("player: %+v", ws.Player)
	}
	if len(ws.Quests) != 1 || ws.Quests[0].Name != "Silence the Bells" || ws.Quests[0].ID != "Q001" {
		t.Errorf("quests: %+v", ws.Quests)
	}

	if len(table) != 2 {
		t.Fatalf("expected 2 encounter rows, got %d", len(table))
	}
	if table[0].Weight != 4 || table[0].Kind != "rumor" {
		t.Errorf("encounter row: %+v", table[0])
	}
}

func TestLoad_PartialWorldKeepsDefaults(t *testing.T) {
	path := writeCampaign(t, `
world{
    location = { danger = 5 },
}
`)

	ws, table, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ws.Location.Danger != 5 {
		t.Errorf("danger: %d", ws.Location.Danger)
	}
	// Unspecified fields keep the built-in defaults.
	if ws.Player.Name == "" || ws.Clock.Day != 1 {
		t.Errorf("defaults lost: %+v", ws)
	}
	if len(table) == 0 {
		t.Error("no encounter declarations should keep the default table")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"zero weight":     `encounter{ weight = 0, text = "x" }`,
		"missing text":    `encounter{ weight = 2 }`,
		"day below one":   `world{ day = 0 }`,
		"negative danger": `world{ location = { danger = -1 } }`,
	}

	for name, src := range cases {
		path := writeCampaign(t, src)
		if _, _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad_SandboxBlocksIO(t *testing.T) {
	path := writeCampaign(t, `dofile("/etc/passwd")`)
	if _, _, err := Load(path); err == nil {
		t.Error("expected sandboxed execution to reject dofile")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "absent.lua")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	path := writeCampaign(t, `world{ this is not lua`)
	if _, _, err := Load(path); err == nil {
		t.Error("expected error for invalid lua")
	}
}
