// Package loader reads campaign definitions from a Lua file: campaign
// metadata, the starting world state, and the encounter table. The VM
// is sandboxed and discarded after loading; absent file means the
// built-in defaults.
package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/dmcore/engine"
	"github.com/nathoo/dmcore/engine/state"
	"github.com/nathoo/dmcore/types"
)

// collector accumulates declarations during file execution.
type collector struct {
	campaign   *lua.LTable
	world      *lua.LTable
	encounters []*lua.LTable
}

// Load executes the campaign file at path and compiles the starting
// world state and encounter table. An empty path returns the built-in
// defaults.
func Load(path string) (*types.WorldState, engine.EncounterTable, error) {
	if path == "" {
		return state.Default(), engine.DefaultEncounters(), nil
	}

	// Sandboxed VM: safe libs only, no file or random access.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	if err := L.DoFile(path); err != nil {
		return nil, nil, fmt.Errorf("executing campaign file %s: %w", path, err)
	}

	ws, table, err := compile(coll)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling campaign %s: %w", path, err)
	}
	return ws, table, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}

// registerAPI exposes the three declaration functions to Lua.
func registerAPI(L *lua.LState, coll *collector) {
	L.SetGlobal("campaign", L.NewFunction(func(L *lua.LState) int {
		coll.campaign = L.CheckTable(1)
		return 0
	}))
	L.SetGlobal("world", L.NewFunction(func(L *lua.LState) int {
		coll.world = L.CheckTable(1)
		return 0
	}))
	L.SetGlobal("encounter", L.NewFunction(func(L *lua.LState) int {
		coll.encounters = append(coll.encounters, L.CheckTable(1))
		return 0
	}))
}

// compile turns the collected tables into a validated world state and
// encounter table, layered over the defaults.
func compile(coll *collector) (*types.WorldState, engine.EncounterTable, error) {
	ws := state.Default()

	if coll.campaign != nil {
		ws.Campaign = types.Campaign{
			Title:     getString(coll.campaign, "title", ""),
			Themes:    getStrings(coll.campaign, "themes"),
			Rules:     getString(coll.campaign, "rules", ""),
			SetupDone: true,
		}
	}

	if coll.world != nil {
		if err := compileWorld(coll.world, ws); err != nil {
			return nil, nil, err
		}
	}

	table := engine.DefaultEncounters()
	if len(coll.encounters) > 0 {
		table = nil
		for i, t := range coll.encounters {
			e := engine.EncounterEntry{
				Weight: getInt(t, "weight", 1),
				Kind:   getString(t, "kind", "event"),
				Text:   getString(t, "text", ""),
			}
			if e.Weight <= 0 {
				return nil, nil, fmt.Errorf("encounter %d: weight must be positive", i+1)
			}
			if e.Text == "" {
				return nil, nil, fmt.Errorf("encounter %d: text is required", i+1)
			}
			table = append(table, e)
		}
	}

	state.Normalize(ws)
	return ws, table, nil
}

func compileWorld(t *lua.LTable, ws *types.WorldState) error {
	ws.Clock.Day = getInt(t, "day", ws.Clock.Day)
	if ws.Clock.Day < 1 {
		return fmt.Errorf("world: day must be at least 1")
	}
	if phase := getString(t, "phase", ""); phase != "" {
		ws.Clock.Phase = types.Phase(phase)
	}
	if weather := getString(t, "weather", ""); weather != "" {
		ws.Weather = types.Weather(weather)
	}

	if loc, ok := t.RawGetString("location").(*lua.LTable); ok {
		ws.Location.Name = getString(loc, "name", ws.Location.Name)
		ws.Location.Danger = getInt(loc, "danger", ws.Location.Danger)
		if ws.Location.Danger < 0 {
			return fmt.Errorf("world: danger cannot be negative")
		}
		if tags := getStrings(loc, "tags"); tags != nil {
			ws.Location.Tags = tags
		}
	}

	if p, ok := t.RawGetString("player").(*lua.LTable); ok {
		ws.Player.Name = getString(p, "name", ws.Player.Name)
		ws.Player.Class = getString(p, "class", ws.Player.Class)
		ws.Player.HP = getInt(p, "hp", ws.Player.HP)
		ws.Player.AC = getInt(p, "ac", ws.Player.AC)
		if skills, ok := p.RawGetString("skills").(*lua.LTable); ok {
			ws.Player.Skills = map[string]int{}
			skills.ForEach(func(k, v lua.LValue) {
				if n, ok := v.(lua.LNumber); ok {
					ws.Player.Skills[k.String()] = int(n)
				}
			})
		}
		if traits := getStrings(p, "traits"); traits != nil {
			ws.Player.Traits = traits
		}
		if inv := getStrings(p, "inventory"); inv != nil {
			ws.Player.Inventory = inv
		}
	}

	if quests, ok := t.RawGetString("quests").(*lua.LTable); ok {
		ws.Quests = nil
		idx := 0
		quests.ForEach(func(_, v lua.LValue) {
			q, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			idx++
			ws.Quests = append(ws.Quests, types.Quest{
				ID:    getString(q, "id", fmt.Sprintf("Q%03d", idx)),
				Name:  getString(q, "name", ""),
				Stage: getInt(q, "stage", 0),
				Notes: getString(q, "notes", ""),
			})
		})
	}

	return nil
}

func getString(t *lua.LTable, key, fallback string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return fallback
}

func getInt(t *lua.LTable, key string, fallback int) int {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return fallback
}

func getStrings(t *lua.LTable, key string) []string {
	tbl, ok := t.RawGetString(key).(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	tbl.ForEach(func(_, v lua.LValue) {
		if s, ok := v.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}
