package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/nathoo/dmcore/engine/state"
	"github.com/nathoo/dmcore/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "dmcore.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestPutGet_RoundTrip(t *testing.T) {
	s := testStore(t)

	in := map[string]int{"arcana": 4}
	if err := s.Put("skills", in); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out map[string]int
	if err := s.Get("skills", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out["arcana"] != 4 {
		t.Errorf("round trip: got %v", out)
	}

	// Upsert replaces.
	in["arcana"] = 5
	if err := s.Put("skills", in); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Get("skills", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out["arcana"] != 5 {
		t.Errorf("upsert: got %v", out)
	}
}

func TestGet_Missing(t *testing.T) {
	s := testStore(t)

	var v int
	if err := s.Get("nope", &v); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadState_FallbackOnMissing(t *testing.T) {
	s := testStore(t)
	fallback := state.Default()

	ws := s.LoadState(fallback)
	if ws != fallback {
		t.Error("missing record should return the fallback")
	}
}

func TestLoadState_FallbackOnCorrupt(t *testing.T) {
	s := testStore(t)
	if err := s.Put(KeyState, "scribbles"); err != nil {
		t.Fatalf("put: %v", err)
	}

	fallback := state.Default()
	if ws := s.LoadState(fallback); ws != fallback {
		t.Error("corrupt record should return the fallback")
	}
}

func TestSaveLoad_AllRecords(t *testing.T) {
	s := testStore(t)

	ws := state.Default()
	ws.Clock.Day = 4
	s.SaveState(ws)
	s.SaveHistory([]types.Message{{ID: "01J", Role: types.RoleUser, Content: "hello"}})
	s.SaveEventLog([]types.LogEntry{{Kind: types.LogRoll, Text: "2d6 roll"}})

	loaded := s.LoadState(state.Default())
	if loaded.Clock.Day != 4 {
		t.Errorf("state: got day %d", loaded.Clock.Day)
	}

	history := s.LoadHistory()
	if len(history) != 1 || history[0].Content != "hello" {
		t.Errorf("history: got %v", history)
	}

	eventLog := s.LoadEventLog()
	if len(eventLog) != 1 || eventLog[0].Kind != types.LogRoll {
		t.Errorf("event log: got %v", eventLog)
	}
}

func TestLoadHistory_EmptyNotNil(t *testing.T) {
	s := testStore(t)

	if h := s.LoadHistory(); h == nil {
		t.Error("expected empty slice, not nil")
	}
	if l := s.LoadEventLog(); l == nil {
		t.Error("expected empty slice, not nil")
	}
}
