package state

import (
	"testing"

	"github.com/nathoo/dmcore/types"
)

func TestClone_Independent(t *testing.T) {
	ws := Default()
	clone := Clone(ws)

	clone.Clock.Day = 99
	clone.Location.Tags[0] = "ruins"
	clone.Player.Skills["arcana"] = -5
	clone.Player.Inventory[0] = "cursed idol"
	clone.Quests[0].Stage = 7

	if ws.Clock.Day != 1 {
		t.Error("clone shares clock")
	}
	if ws.Location.Tags[0] == "ruins" {
		t.Error("clone shares location tags")
	}
	if ws.Player.Skills["arcana"] != 4 {
		t.Error("clone shares skills map")
	}
	if ws.Player.Inventory[0] == "cursed idol" {
		t.Error("clone shares inventory")
	}
	if ws.Quests[0].Stage != 0 {
		t.Error("clone shares quests")
	}
}

func TestAdvanceClock_Sequence(t *testing.T) {
	ws := Default()

	want := []struct {
		day   int
		phase types.Phase
	}{
		{1, types.PhaseNoon},
		{1, types.PhaseEvening},
		{1, types.PhaseNight},
		{2, types.PhaseMorning},
		{2, types.PhaseNoon},
	}

	for i, w := range want {
		AdvanceClock(ws)
		if ws.Clock.Day != w.day || ws.Clock.Phase != w.phase {
			t.Fatalf("step %d: got day %d %s, want day %d %s",
				i, ws.Clock.Day, ws.Clock.Phase, w.day, w.phase)
		}
	}
}

func TestAddItem(t *testing.T) {
	ws := Default()
	n := len(ws.Player.Inventory)

	if !AddItem(ws, "  rope  ") {
		t.Fatal("expected add to succeed")
	}
	if len(ws.Player.Inventory) != n+1 || ws.Player.Inventory[n] != "rope" {
		t.Errorf("expected trimmed item appended, got %v", ws.Player.Inventory)
	}

	if AddItem(ws, "   ") {
		t.Error("blank name should be rejected")
	}
}

func TestRemoveItem_Bounds(t *testing.T) {
	ws := Default()
	n := len(ws.Player.Inventory)

	if _, ok := RemoveItem(ws, -1); ok {
		t.Error("negative index should be a no-op")
	}
	if _, ok := RemoveItem(ws, n); ok {
		t.Error("past-the-end index should be a no-op")
	}

	item, ok := RemoveItem(ws, 0)
	if !ok || item != "ritual dagger" {
		t.Fatalf("expected first item removed, got %q ok=%v", item, ok)
	}
	if len(ws.Player.Inventory) != n-1 {
		t.Errorf("expected %d items, got %d", n-1, len(ws.Player.Inventory))
	}
}

func TestAddQuest_SequentialIDs(t *testing.T) {
	ws := Default()

	q, ok := AddQuest(ws, "Find the Well")
	if !ok || q.ID != "Q002" || q.Stage != 0 {
		t.Errorf("got %+v ok=%v", q, ok)
	}

	q, ok = AddQuest(ws, "Warn the Wardens")
	if !ok || q.ID != "Q003" {
		t.Errorf("got %+v ok=%v", q, ok)
	}

	if _, ok := AddQuest(ws, "  "); ok {
		t.Error("blank quest name should be rejected")
	}
}

func TestAdvanceQuest_Bounds(t *testing.T) {
	ws := Default()

	q, ok := AdvanceQuest(ws, 0, 2)
	if !ok || q.Stage != 2 {
		t.Errorf("got stage %d ok=%v", q.Stage, ok)
	}
	q, ok = AdvanceQuest(ws, 0, -1)
	if !ok || q.Stage != 1 {
		t.Errorf("got stage %d ok=%v", q.Stage, ok)
	}

	if _, ok := AdvanceQuest(ws, 5, 1); ok {
		t.Error("out-of-range index should be a no-op")
	}
}

func TestNormalize_Repairs(t *testing.T) {
	ws := &types.WorldState{
		Clock:    types.Clock{Day: 0, Phase: "midnightish"},
		Weather:  "sleet",
		Location: types.Location{Danger: -3},
	}

	Normalize(ws)

	if ws.Clock.Day != 1 {
		t.Errorf("day floor: got %d", ws.Clock.Day)
	}
	if ws.Clock.Phase != types.PhaseMorning {
		t.Errorf("invalid phase should fall back to morning, got %s", ws.Clock.Phase)
	}
	if ws.Weather != types.WeatherClear {
		t.Errorf("invalid weather should fall back to clear, got %s", ws.Weather)
	}
	if ws.Location.Danger != 0 {
		t.Errorf("danger floor: got %d", ws.Location.Danger)
	}
	if ws.Location.Tags == nil || ws.Player.Skills == nil || ws.Player.Traits == nil ||
		ws.Player.Inventory == nil || ws.Quests == nil || ws.Campaign.Themes == nil {
		t.Error("nil collections should become empty")
	}
}

func TestNormalize_LeavesSkillValuesAlone(t *testing.T) {
	ws := Default()
	ws.Player.Skills["arcana"] = -10
	Normalize(ws)
	if ws.Player.Skills["arcana"] != -10 {
		t.Error("skill values are unbounded and must survive normalization")
	}
}
